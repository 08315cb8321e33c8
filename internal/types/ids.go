// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type ServerID string
type TurnID string

func NewServerID() ServerID {
	return ServerID(uuid.New().String())
}

func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}
