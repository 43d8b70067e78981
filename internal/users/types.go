package users

// CreateUserRequest is the signup input. Workspace names a workspace that is
// created on first use; the caller never supplies a workspace id directly.
type CreateUserRequest struct {
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Workspace string `json:"workspace"`
}

// SigninRequest is the credential check input.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Workspace is the tenant all users and chats belong to.
type Workspace struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}
