package schedule

import "github.com/jakechorley/swiftshift/pkg/core/model"

// DisplayNames picks the shortest unambiguous label per user:
// - the first name when no one else shares it
// - "First L." when that is unique
// - otherwise the full name
func DisplayNames(users []model.User) map[string]string {
	firstNameCounts := make(map[string]int)
	initialCounts := make(map[string]int)
	for _, u := range users {
		firstNameCounts[u.FirstName]++
		if key, ok := initialName(u); ok {
			initialCounts[key]++
		}
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		if firstNameCounts[u.FirstName] == 1 {
			names[u.ID] = u.FirstName
			continue
		}
		if key, ok := initialName(u); ok && initialCounts[key] == 1 {
			names[u.ID] = key
			continue
		}
		names[u.ID] = u.FullName()
	}
	return names
}

func initialName(u model.User) (string, bool) {
	if u.LastName == "" {
		return "", false
	}
	return u.FirstName + " " + string([]rune(u.LastName)[0]) + ".", true
}
