package member

// TeamMember is the mention-autocomplete projection of a profile. Only
// members of the caller's tenant are ever returned.
type TeamMember struct {
	UserID     string  `json:"user_id"`
	UserName   string  `json:"user_name"`
	UserEmail  string  `json:"user_email"`
	UserAvatar *string `json:"user_avatar"`
}

type MemberListResponse struct {
	Members []*TeamMember `json:"members"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
