package auth

// Claims es la identidad verificada del caller. UserID se compara contra owner_user_id / reviewed_by.
type Claims struct {
	UserID string
	Email  string
}
