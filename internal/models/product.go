package models

import "time"

// Category values as stored in the catalog. The wire values are the ones the
// storefront already filters on.
const (
	CategoryGames        = "juegos"
	CategoryApplications = "aplicaciones"
	CategorySeriesTV     = "seriesTV"
	CategoryMovies       = "peliculas"
	CategoryAnimes       = "animes"
	CategoryAnimated     = "animados"
	CategorySoapOperas   = "telenovelas"
	CategoryRealityShows = "realitys"
)

// Subcategory values.
const (
	SubcategoryPC         = "pc"
	SubcategoryXboxOne    = "xboxOne"
	SubcategoryXboxSeries = "xboxSeries"
	SubcategoryApple      = "apple"
	SubcategoryAndroid    = "android"
)

// Product is a catalog entry.
type Product struct {
	ID          string    `firestore:"id" json:"id"`
	Title       string    `firestore:"titulo" json:"titulo"`
	Description string    `firestore:"descripcion" json:"descripcion"`
	Image       string    `firestore:"imagen" json:"imagen"`
	Country     string    `firestore:"pais" json:"pais"`
	ReleaseDate string    `firestore:"fecha_lanzamiento" json:"fecha_lanzamiento"`
	Platforms   []string  `firestore:"plataformas" json:"plataformas"`
	Category    string    `firestore:"categoria" json:"categoria"`
	Subcategory *string   `firestore:"subcategoria" json:"subcategoria"`
	CreatedAt   time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at" json:"updated_at"`
}

// ProductInput is the payload accepted when creating products, either by hand
// or from a reviewed PDF candidate.
type ProductInput struct {
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	Image       string   `json:"imagen"`
	Country     string   `json:"pais"`
	ReleaseDate string   `json:"fecha_lanzamiento"`
	Platforms   []string `json:"plataformas"`
	Category    string   `json:"categoria"`
	Subcategory *string  `json:"subcategoria"`
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Title       *string   `json:"titulo,omitempty"`
	Description *string   `json:"descripcion,omitempty"`
	Image       *string   `json:"imagen,omitempty"`
	Country     *string   `json:"pais,omitempty"`
	ReleaseDate *string   `json:"fecha_lanzamiento,omitempty"`
	Platforms   *[]string `json:"plataformas,omitempty"`
	Category    *string   `json:"categoria,omitempty"`
	Subcategory *string   `json:"subcategoria,omitempty"`
}

// IsEmpty reports whether the patch would change nothing besides updated_at.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil && p.Country == nil &&
		p.ReleaseDate == nil && p.Platforms == nil && p.Category == nil && p.Subcategory == nil
}

// Apply copies the non-nil fields of the patch onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Country != nil {
		product.Country = *p.Country
	}
	if p.ReleaseDate != nil {
		product.ReleaseDate = *p.ReleaseDate
	}
	if p.Platforms != nil {
		product.Platforms = *p.Platforms
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Subcategory != nil {
		product.Subcategory = p.Subcategory
	}
}

// ProductFilter narrows a product listing. Empty fields match everything.
type ProductFilter struct {
	ID          string
	Category    string
	Subcategory string
	Search      string
}

// CandidateProduct is a product proposed by the PDF extractor, pending review.
// Every field is always populated; placeholders fill whatever the extractor
// could not recognise, and DefaultedFields names those fields.
type CandidateProduct struct {
	Title           string   `json:"titulo"`
	Description     string   `json:"descripcion"`
	Country         string   `json:"pais"`
	ReleaseDate     string   `json:"fecha_lanzamiento"`
	Platforms       []string `json:"plataformas"`
	Category        string   `json:"categoria"`
	Subcategory     string   `json:"subcategoria"`
	Image           string   `json:"imagen,omitempty"`
	DefaultedFields []string `json:"defaulted_fields,omitempty"`
}

// SiteConfig is a key/value entry of storefront configuration.
type SiteConfig struct {
	ID        string    `firestore:"id" json:"id"`
	Key       string    `firestore:"key" json:"key"`
	Value     string    `firestore:"value" json:"value"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}

// SocialNetwork is a storefront social link, keyed by name.
type SocialNetwork struct {
	ID        string    `firestore:"id" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	URL       string    `firestore:"url" json:"url"`
	Icon      string    `firestore:"icon" json:"icon"`
	IsActive  bool      `firestore:"is_active" json:"is_active"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}

// BusinessGroup is a partner group listed on the storefront.
type BusinessGroup struct {
	ID          string    `firestore:"id" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Link        string    `firestore:"link" json:"link"`
	IsActive    bool      `firestore:"is_active" json:"is_active"`
	CreatedAt   time.Time `firestore:"created_at" json:"created_at"`
}
