package models

// AuthorInfo is an entry of the author directory kept in the site file.
type AuthorInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	LinkedIn    string `json:"linkedin,omitempty" yaml:"linkedin"`
	Image       string `json:"image,omitempty" yaml:"image"`
}

type FeaturedAuthor struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

type Testimonial struct {
	Name    string `json:"name" yaml:"name"`
	Handle  string `json:"handle" yaml:"handle"`
	Avatar  string `json:"avatar" yaml:"avatar"`
	Content string `json:"content" yaml:"content"`
	Link    string `json:"link,omitempty" yaml:"link"`
}
