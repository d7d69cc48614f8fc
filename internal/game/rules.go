package game

import (
	"github.com/mcoot/rpsduel-go/internal/dependencies/random"
	"github.com/mcoot/rpsduel-go/internal/model"
)

// beats maps each choice to the choice it defeats.
var beats = map[model.Choice]model.Choice{
	model.ChoiceRock:     model.ChoiceScissors,
	model.ChoiceScissors: model.ChoicePaper,
	model.ChoicePaper:    model.ChoiceRock,
}

// Resolve determines the round outcome from a's perspective.
// Identical symbols draw; otherwise the beats table decides.
func Resolve(a, b model.Choice) model.Outcome {
	if a == b {
		return model.OutcomeDraw
	}
	if beats[a] == b {
		return model.OutcomeWin
	}
	return model.OutcomeLose
}

// ParseChoice validates a raw submission against the three-symbol alphabet.
func ParseChoice(raw string) (model.Choice, error) {
	c := model.Choice(raw)
	if !c.Valid() {
		return model.ChoiceNone, model.ErrInvalidChoice
	}
	return c, nil
}

// RandomChoice draws a choice uniformly at random for the automated opponent.
func RandomChoice(rnd random.Random) model.Choice {
	return model.Choices[rnd.Intn(len(model.Choices))]
}
