package domain

import "time"

// Post es una pregunta de la comunidad.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer es una respuesta a un Post. Por Post hay a lo sumo una con IsSolution=true.
type Answer struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	IsSolution bool      `json:"is_solution"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostDetail agrupa un Post con sus respuestas ya ordenadas.
type PostDetail struct {
	Post    Post     `json:"post"`
	Answers []Answer `json:"answers"`
}
