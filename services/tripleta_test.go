package services

import (
	"testing"

	"lottery-publish-system/models"

	"github.com/stretchr/testify/assert"
)

func tripletaBet() models.TripleBet {
	return models.TripleBet{
		ID:        "bet1",
		Item1ID:   "a",
		Item2ID:   "b",
		Item3ID:   "c",
		DrawCount: 12,
	}
}

func TestEvaluateTripletaAllItemsHit(t *testing.T) {
	winners := map[string]bool{"a": true, "b": true, "c": true, "x": true}

	// Winning early, with most of the range still unplayed.
	assert.Equal(t, TripletaWon, EvaluateTripleta(tripletaBet(), winners, 5))
}

func TestEvaluateTripletaWinsOnFinalDraw(t *testing.T) {
	winners := map[string]bool{"a": true, "b": true, "c": true}

	// The third item landing in the last draw of the range still wins.
	assert.Equal(t, TripletaWon, EvaluateTripleta(tripletaBet(), winners, 12))
}

func TestEvaluateTripletaExpiresAfterFullRange(t *testing.T) {
	winners := map[string]bool{"a": true, "b": true, "x": true, "y": true}

	assert.Equal(t, TripletaExpired, EvaluateTripleta(tripletaBet(), winners, 12))
}

func TestEvaluateTripletaPendingMidRange(t *testing.T) {
	winners := map[string]bool{"a": true, "b": true}

	assert.Equal(t, TripletaPending, EvaluateTripleta(tripletaBet(), winners, 7))
}

func TestEvaluateTripletaNoDrawsYet(t *testing.T) {
	assert.Equal(t, TripletaPending, EvaluateTripleta(tripletaBet(), map[string]bool{}, 0))
}
