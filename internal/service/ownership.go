package service

import (
	"fittrack/workout-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckOwnership returns ErrAccessDenied unless principal owns record.
// Callers resolve the record first so a missing record surfaces as
// ErrNotFound, never as an ownership failure.
func CheckOwnership(principal primitive.ObjectID, record domain.Owned) error {
	if principal == primitive.NilObjectID || record.OwnerID() != principal {
		return ErrAccessDenied
	}
	return nil
}
