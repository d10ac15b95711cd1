// Package cards defines the typed records of the card repository and the
// cross-document rules that schema validation cannot express.
package cards

import (
	"fmt"

	"github.com/nrdb/cardlint/pkg/schema"
)

// Cycle is a named release group of packs.
type Cycle struct {
	Code string `json:"code" jsonschema:"unique cycle code"`
	Name string `json:"name" jsonschema:"display name of the cycle"`
}

// Pack is a named set of cards belonging to one cycle.
type Pack struct {
	Code      string `json:"code" jsonschema:"unique pack code; also the base name of the pack's card file"`
	Name      string `json:"name" jsonschema:"display name of the pack"`
	CycleCode string `json:"cycle_code" jsonschema:"code of the cycle this pack belongs to"`
}

// Card is a single game-data record belonging to one pack.
type Card struct {
	Code     string `json:"code" jsonschema:"unique card code"`
	Name     string `json:"name" jsonschema:"display name of the card"`
	PackCode string `json:"pack_code" jsonschema:"code of the pack whose file holds this card"`
}

func labelOf(name, code string) string {
	if name != "" {
		return name
	}
	return code
}

// CheckCardPack verifies a card's pack_code matches the pack file it appears in.
func CheckCardPack(card Card, packCode string) *schema.Violation {
	if card.PackCode == packCode {
		return nil
	}
	return schema.NewViolation("/pack_code", "pack_code", fmt.Sprintf(
		"Pack code '%s' of the card '%s' doesn't match the pack code '%s' of the file it appears in.",
		card.PackCode, card.Code, packCode))
}

// CheckPackCycle verifies a pack's cycle_code names one of the known cycles.
func CheckPackCycle(pack Pack, cycles []Cycle) *schema.Violation {
	for _, c := range cycles {
		if c.Code == pack.CycleCode {
			return nil
		}
	}
	return schema.NewViolation("/cycle_code", "cycle_code", fmt.Sprintf(
		"Cycle code '%s' of the pack '%s' doesn't match any valid cycle code.",
		pack.CycleCode, pack.Code))
}
