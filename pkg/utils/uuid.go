package utils

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// stateLength dá ~190 bits de entropia para o state do OAuth
const stateLength = 32

// GenerateState gera o valor opaco usado no parâmetro state do OAuth
func GenerateState() (string, error) {
	return gonanoid.Generate(characters, stateLength)
}

func NewID() string {
	return uuid.NewString()
}
