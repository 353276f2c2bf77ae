// Package models defines client-side data models used by the Crux CLI.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Relationship is how a nominee is related to the vault owner.
type Relationship string

const (
	RelationshipFriend  Relationship = "Friend"
	RelationshipMom     Relationship = "Mom"
	RelationshipDad     Relationship = "Dad"
	RelationshipBrother Relationship = "Brother"
	RelationshipSister  Relationship = "Sister"
)

// Relationships lists the accepted values in display order.
var Relationships = []Relationship{
	RelationshipFriend,
	RelationshipMom,
	RelationshipDad,
	RelationshipBrother,
	RelationshipSister,
}

// ParseRelationship matches s case-insensitively against Relationships.
func ParseRelationship(s string) (Relationship, error) {
	for _, r := range Relationships {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown relationship %q", s)
}

// Color is the badge background shown next to a nominee.
func (r Relationship) Color() string {
	switch r {
	case RelationshipMom:
		return "#E3F2FD"
	case RelationshipFriend:
		return "#FCE4EC"
	case RelationshipBrother:
		return "#E8F5E9"
	default:
		return "#F5F5F5"
	}
}

// Nominee is a person who gets access to the vault when the owner cannot.
type Nominee struct {
	ID           string
	Email        string
	Relationship Relationship
	CreatedAt    time.Time
}
