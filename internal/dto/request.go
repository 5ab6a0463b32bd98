package dto

// RegisterRequest starts account registration.
type RegisterRequest struct {
	Username       string `json:"username" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	FirstPassword  string `json:"first_password" binding:"required,min=6"`
	SecondPassword string `json:"second_password" binding:"required,eqfield=FirstPassword"`
}

// LoginRequest authenticates a user.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateResearchItemRequest creates a research item. Exactly one of FileID
// (attach an existing shared file) or SourceURL (ingest a new file) may be
// set; both absent creates a file-less item.
type CreateResearchItemRequest struct {
	Title     string  `json:"title" binding:"required"`
	Notes     string  `json:"notes"`
	FileID    *string `json:"file_id"`
	SourceURL string  `json:"source_url"`
	FileName  string  `json:"file_name"`
}

// GenerateCopyRequest asks the completion API for new ad copy.
type GenerateCopyRequest struct {
	Brief    string   `json:"brief" binding:"required"`
	SwipeIDs []string `json:"swipe_ids"`
}

// EditCopyRequest asks the completion API to rewrite existing copy.
type EditCopyRequest struct {
	Text        string `json:"text" binding:"required"`
	Instruction string `json:"instruction" binding:"required"`
}
