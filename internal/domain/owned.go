package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Owned is implemented by every record that carries an immutable owner.
type Owned interface {
	OwnerID() primitive.ObjectID
}
