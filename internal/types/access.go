package types

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Access levels mirror the platform's resource permission model.
const (
	AccessNone  = -1
	AccessRead  = 0
	AccessWrite = 1
	AccessAdmin = 2
)

type AccessEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Level  int       `json:"level"`
}

type AccessList struct {
	Users []AccessEntry `json:"users"`
}

// LevelFor returns the explicit level granted to userID, or AccessNone.
func (a AccessList) LevelFor(userID uuid.UUID) int {
	level := AccessNone
	for _, entry := range a.Users {
		if entry.UserID == userID && entry.Level > level {
			level = entry.Level
		}
	}
	return level
}

// Grant sets userID's level, raising an existing grant if present.
func (a *AccessList) Grant(userID uuid.UUID, level int) {
	for i, entry := range a.Users {
		if entry.UserID == userID {
			if level > entry.Level {
				a.Users[i].Level = level
			}
			return
		}
	}
	a.Users = append(a.Users, AccessEntry{UserID: userID, Level: level})
}

func DecodeAccess(raw datatypes.JSON) AccessList {
	var acl AccessList
	if len(raw) == 0 {
		return acl
	}
	_ = json.Unmarshal(raw, &acl)
	return acl
}

func EncodeAccess(acl AccessList) datatypes.JSON {
	raw, err := json.Marshal(acl)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
