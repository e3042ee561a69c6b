package providers

import "github.com/hyperjump/tana/pkg/utils"

// Every provider reports ratings on its own scale; candidates carry one
// unified 0-10 score rounded to a single decimal. A zero or missing upstream
// rating normalizes to absent (nil), never to 0. Adding a provider with a
// new scale means adding one function here.

// ScoreFrom100 converts a 0-100 rating (AniList meanScore) to the 0-10 scale.
func ScoreFrom100(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	s := utils.Round1(utils.Clamp(v, 0, 100) / 10)
	return &s
}

// ScoreFrom10 passes a 0-10 rating through (TMDB vote_average, MangaDex
// bayesian rating), clamping and rounding only.
func ScoreFrom10(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	s := utils.Round1(utils.Clamp(v, 0, 10))
	return &s
}

// ScoreFrom5 converts a 0-5 rating (Open Library ratings_average) to the
// 0-10 scale.
func ScoreFrom5(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	s := utils.Round1(utils.Clamp(v, 0, 5) * 2)
	return &s
}
