package models

import "time"

const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery crew"
)

type Group struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"unique;not null" json:"name"`
	Users []User `gorm:"many2many:user_groups" json:"-"`
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Groups       []Group   `gorm:"many2many:user_groups" json:"groups"`
	CreatedAt    time.Time `json:"created_at"`
}

// InGroup reports whether the user's loaded groups include name.
// Groups must be preloaded for this to be meaningful.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
