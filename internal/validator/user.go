package validator

import "strings"

// 管理者によるユーザー編集
type UserEditForm struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (f UserEditForm) Validate() error {
	name := Ok("name")
	if f.Name != nil {
		n := len([]rune(strings.TrimSpace(*f.Name)))
		if n < 2 || n > 100 {
			name = Invalid("name", "must be 2 to 100 characters")
		}
	}

	phone := Ok("phone")
	if f.Phone != nil {
		n := len(digitsOnly(*f.Phone))
		if n < 10 || n > 15 {
			phone = Invalid("phone", "must have 10 to 15 digits")
		}
	}

	role := Ok("role")
	if f.Role != nil && *f.Role != "USER" && *f.Role != "ADMIN" {
		role = Invalid("role", "must be USER or ADMIN")
	}

	empty := Ok("body")
	if f.Name == nil && f.Phone == nil && f.Role == nil && f.IsActive == nil {
		empty = Invalid("body", "nothing to update")
	}

	return collect(name, phone, role, empty)
}
