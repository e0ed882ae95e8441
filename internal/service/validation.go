package service

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requireName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// validCodes accepts catalog codes, which start at 1.
func validCodes(field string, codes []int) error {
	for _, code := range codes {
		if code < 1 {
			return invalid(field, "must contain positive codes")
		}
	}
	return nil
}

func nonNegative(field string, value float64) error {
	if value < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

// parseObjectIDs converts hex identifiers from a request into ObjectIDs.
func parseObjectIDs(field string, hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hex := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, invalid(field, "must contain valid identifiers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
