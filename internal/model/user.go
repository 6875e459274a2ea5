package model

type User struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
}
