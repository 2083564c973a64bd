package pebblestore

import (
	"encoding/json"
	"fmt"

	"github.com/userhub/userhub/pkg/models"
)

// userKeyPrefix namespaces user records within the pebble keyspace.
const userKeyPrefix = "user/"

func userKey(userID string) []byte {
	return []byte(userKeyPrefix + userID)
}

// toItem serializes a user into its store item. The item's user_id attribute
// doubles as the partition key and must match the pebble key it is written
// under.
func toItem(user *models.User) ([]byte, error) {
	return json.Marshal(user)
}

// fromItem deserializes a store item, cross-checking the embedded partition
// key against the pebble key it was read from. A mismatch means the store has
// drifted from the record schema; it surfaces as a corrupt record, never as a
// client error.
func fromItem(key, value []byte) (*models.User, error) {
	if len(key) <= len(userKeyPrefix) || string(key[:len(userKeyPrefix)]) != userKeyPrefix {
		return nil, &models.CorruptRecordError{
			Key:    string(key),
			Reason: "key outside the user keyspace",
		}
	}

	var user models.User
	if err := json.Unmarshal(value, &user); err != nil {
		return nil, &models.CorruptRecordError{
			Key:    string(key),
			Reason: fmt.Sprintf("undecodable item: %v", err),
		}
	}
	if user.UserID == "" {
		return nil, &models.CorruptRecordError{
			Key:    string(key),
			Reason: "item is missing the user_id partition key",
		}
	}
	if string(key[len(userKeyPrefix):]) != user.UserID {
		return nil, &models.CorruptRecordError{
			Key:    string(key),
			Reason: "item user_id does not match the store key",
		}
	}

	return &user, nil
}
