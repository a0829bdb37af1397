package backend

import (
	"bytes"
	"encoding/json"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

// decodeUserList accepts a bare array, a {"results": [...]} page or a
// {"users": [...]} wrapper. Any other shape is an empty list.
func decodeUserList(body []byte) ([]domain.User, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []domain.User{}, nil
	}

	switch trimmed[0] {
	case '[':
		return decodeUsers(trimmed)
	case '{':
		var envelope struct {
			Results json.RawMessage `json:"results"`
			Users   json.RawMessage `json:"users"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		for _, raw := range []json.RawMessage{envelope.Results, envelope.Users} {
			if isArray(raw) {
				return decodeUsers(raw)
			}
		}
	}
	return []domain.User{}, nil
}

func decodeUsers(raw []byte) ([]domain.User, error) {
	users := []domain.User{}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
