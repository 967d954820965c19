package scores

import "context"

// Renderer turns a page of normalized scores into formatted plays.
type Renderer struct {
	Ratings   *StarRatings
	Formatter Formatter
}

// RenderPage formats page, numbering plays from offset. Star ratings are
// resolved for the whole page at once.
func (r *Renderer) RenderPage(ctx context.Context, page []NormalizedScore, offset int) []Play {
	var ratings []*float64
	if r.Ratings != nil {
		ratings, _ = r.Ratings.ResolvePage(ctx, page)
	}

	plays := make([]Play, len(page))
	for i, n := range page {
		sr := BaseStarRating(n.Score)
		if ratings != nil {
			sr = ratings[i]
		}
		plays[i] = r.Formatter.FormatPlay(n, offset+i, sr)
	}
	return plays
}
