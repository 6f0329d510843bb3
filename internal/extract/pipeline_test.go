package extract

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(content []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

// untouchableReader records whether anything tried to read it.
type untouchableReader struct {
	read bool
}

func (r *untouchableReader) Read(p []byte) (int, error) {
	r.read = true
	return 0, io.ErrUnexpectedEOF
}

func upload(filename string, content string) Upload {
	return Upload{Filename: filename, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func TestPipelineProcess_RejectsNonPDF(t *testing.T) {
	extractor := &fakeExtractor{text: haloSection}
	pipeline := NewPipeline(extractor)

	result, err := pipeline.Process(upload("report.txt", "%PDF-1.4"))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrValidation))
	msg, ok := UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Solo se permiten archivos PDF", msg)
	assert.Zero(t, extractor.calls)
}

func TestPipelineProcess_AcceptsUppercaseExtension(t *testing.T) {
	pipeline := NewPipeline(&fakeExtractor{text: haloSection})

	result, err := pipeline.Process(upload("CATALOGO.PDF", "%PDF-1.4"))

	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
}

func TestPipelineProcess_RejectsDeclaredOversizeWithoutReading(t *testing.T) {
	extractor := &fakeExtractor{text: haloSection}
	reader := &untouchableReader{}
	pipeline := NewPipeline(extractor)

	_, err := pipeline.Process(Upload{Filename: "big.pdf", Size: 11 * 1024 * 1024, Content: reader})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	msg, _ := UserMessage(err)
	assert.Equal(t, "El archivo es demasiado grande (máximo 10MB)", msg)
	assert.False(t, reader.read)
	assert.Zero(t, extractor.calls)
}

func TestPipelineProcess_RejectsUnderstatedSize(t *testing.T) {
	extractor := &fakeExtractor{text: haloSection}
	pipeline := NewPipeline(extractor)

	content := bytes.NewReader(make([]byte, MaxUploadSize+1))
	_, err := pipeline.Process(Upload{Filename: "big.pdf", Size: 10, Content: content})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Zero(t, extractor.calls)
}

func TestPipelineProcess_Failures(t *testing.T) {
	cause := errors.New("xref table broken")

	tests := []struct {
		name      string
		extractor *fakeExtractor
		kind      error
		message   string
	}{
		{
			name:      "unreadable document",
			extractor: &fakeExtractor{err: cause},
			kind:      ErrExtraction,
			message:   "Error al procesar el PDF",
		},
		{
			name:      "no text layer",
			extractor: &fakeExtractor{text: " \n\f\t "},
			kind:      ErrExtraction,
			message:   "No se pudo extraer texto del PDF",
		},
		{
			name:      "only short fragments",
			extractor: &fakeExtractor{text: "Página 1\fPágina 2\fÍndice"},
			kind:      ErrNoCandidates,
			message:   "No se encontraron productos válidos en el PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(tt.extractor).Process(upload("catalogo.pdf", "%PDF-1.4"))

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind))
			msg, ok := UserMessage(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestPipelineProcess_ExtractionKeepsCause(t *testing.T) {
	cause := errors.New("xref table broken")
	_, err := NewPipeline(&fakeExtractor{err: cause}).Process(upload("catalogo.pdf", "%PDF-1.4"))

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "xref table broken")
}

func TestPipelineProcess_EndToEnd(t *testing.T) {
	text := haloSection + "\n\n\n" + "Página final del catálogo 2024"
	pipeline := NewPipeline(&fakeExtractor{text: text})

	result, err := pipeline.Process(upload("catalogo.pdf", "%PDF-1.4"))
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	product := result.Products[0]
	assert.Equal(t, "Halo Infinite", product.Title)
	assert.Equal(t, "Estados Unidos", product.Country)
	assert.Equal(t, models.CategoryGames, product.Category)
	assert.Equal(t, models.SubcategoryXboxSeries, product.Subcategory)
	assert.Equal(t, "2021-12-08", product.ReleaseDate)
	assert.Equal(t, []string{"PC", "Xbox Series X", "Xbox"}, product.Platforms)
	assert.Equal(t, DefaultImageURL, product.Image)

	assert.Equal(t, "catalogo.pdf", result.Filename)
	assert.Equal(t, len([]rune(text)), result.TotalTextLength)
}

func TestPipelineProcess_PreservesSectionOrder(t *testing.T) {
	sections := []string{
		"Título: Zelda Tears of the Kingdom\nUna aventura enorme en el reino de Hyrule para Switch.",
		"Título: Age of Empires IV\nEstrategia histórica en tiempo real, disponible en PC.",
		"Título: Forza Horizon 5\nCarreras en mundo abierto ambientadas en México, Xbox One.",
	}
	pipeline := NewPipeline(&fakeExtractor{text: strings.Join(sections, PageBreak)})

	result, err := pipeline.Process(upload("catalogo.pdf", "%PDF-1.4"))
	require.NoError(t, err)

	titles := make([]string, 0, len(result.Products))
	for _, p := range result.Products {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Zelda Tears of the Kingdom", "Age of Empires IV", "Forza Horizon 5"}, titles)
}

func TestFilterCandidates(t *testing.T) {
	candidates := []models.CandidateProduct{
		{Title: "Doom"},
		{Title: "  Ab  "},
		{Title: "Abc"},
	}

	valid := FilterCandidates(candidates)

	require.Len(t, valid, 2)
	assert.Equal(t, "Doom", valid[0].Title)
	assert.Equal(t, "Abc", valid[1].Title)
}
