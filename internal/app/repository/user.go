package repository

import (
	"carematch/internal/app/ds"
)

func (r *Repository) GetUserByID(id string) (*ds.User, error) {
	var user ds.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUsersByIDs loads several profiles at once, keyed by subject. Unknown ids
// are absent from the map.
func (r *Repository) GetUsersByIDs(ids []string) (map[string]ds.User, error) {
	users := make(map[string]ds.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []ds.User
	err := r.db.Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

func (r *Repository) CreateUser(user *ds.User) error {
	return translate(r.db.Create(user).Error)
}

// SaveUser inserts or replaces a profile.
func (r *Repository) SaveUser(user *ds.User) error {
	return translate(r.db.Save(user).Error)
}
