package domain

// Session is the identity projection of one connected client. It starts
// unauthenticated and lives exactly as long as the connection that owns it.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
	Email         string `json:"email"`
}

func NewSession() *Session {
	return &Session{}
}

// SignIn marks the session authenticated for the given identity.
func (s *Session) SignIn(username, email string) {
	s.Authenticated = true
	s.Username = username
	s.Email = email
}

func (s *Session) SignOut() {
	*s = Session{}
}

type RegisterUserDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required,min=1,max=100"`
}

type ConfirmUserDTO struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type LoginUserDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}

// UserAttribute is a single name/value pair held by the identity provider.
type UserAttribute struct {
	Name  string
	Value string
}
