package services

import (
	"crypto/rand"
	"fmt"
)

const teamCodeLength = 6

// Unambiguous alphabet: no 0/O, 1/I/L, so codes survive being read aloud or
// written on paper.
const teamCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeGenerator produces candidate team codes. It is an injected capability
// so tests can supply deterministic values; uniqueness is enforced by the
// database and the retry loop in the team service, not by the generator.
type CodeGenerator interface {
	GenerateTeamCode() (string, error)
}

type randomCodeGenerator struct{}

func NewRandomCodeGenerator() CodeGenerator {
	return randomCodeGenerator{}
}

func (randomCodeGenerator) GenerateTeamCode() (string, error) {
	raw := make([]byte, teamCodeLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes for team code: %w", err)
	}
	code := make([]byte, teamCodeLength)
	for i, b := range raw {
		code[i] = teamCodeCharset[int(b)%len(teamCodeCharset)]
	}
	return string(code), nil
}
