package post

// CreatePostRequest carries the writable fields. Ownership is never taken
// from the payload.
type CreatePostRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"required"`
}

type UpdatePostRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"required"`
}
