package models

type User struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	Password          string
	TravelPreferences string
}

type RegisterData struct {
	FirstName         string `form:"firstName" json:"firstName" binding:"required"`
	LastName          string `form:"lastName" json:"lastName" binding:"required"`
	Email             string `form:"email" json:"email" binding:"required"`
	Password          string `form:"password" json:"password" binding:"required"`
	TravelPreferences string `form:"travelPreferences" json:"travelPreferences"`
}

// LoginData is the login form. The email arrives in the "username" field.
type LoginData struct {
	Email    string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}
