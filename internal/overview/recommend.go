package overview

import (
	"context"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

// recommend derives products the account has browsed categories of but not
// yet favorited: distinct interaction categories in first-seen order (the
// interactions arrive newest first) seed a catalog query that excludes
// every favorited product id. No interactions means no query and an empty
// result.
func (s *Service) recommend(ctx context.Context, graph *store.AccountGraph) ([]Recommendation, error) {
	categories := make([]string, 0, s.policy.CategorySample)
	seen := make(map[string]struct{}, s.policy.CategorySample)
	for _, interaction := range graph.Interactions {
		id := interaction.Product.CategoryID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		categories = append(categories, id)
		if len(categories) == s.policy.CategorySample {
			break
		}
	}
	if len(categories) == 0 {
		return []Recommendation{}, nil
	}

	exclude := make([]string, 0, len(graph.Favorites))
	favorited := make(map[string]struct{}, len(graph.Favorites))
	for _, favorite := range graph.Favorites {
		exclude = append(exclude, favorite.Product.ID)
		favorited[favorite.Product.ID] = struct{}{}
	}

	products, err := s.fetcher.QueryProducts(ctx, store.CatalogQuery{
		CategoryIDs: categories,
		ExcludeIDs:  exclude,
		Limit:       s.policy.RecommendationLimit,
	})
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(products))
	for _, product := range products {
		// The catalog query already excludes favorites; re-check so the
		// invariant holds for any fetcher implementation.
		if _, ok := favorited[product.ID]; ok {
			continue
		}
		image := s.policy.PlaceholderImage
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		recommendations = append(recommendations, Recommendation{
			ID:     product.ID,
			Name:   product.Name,
			Image:  image,
			Price:  product.Price,
			Rating: s.policy.DefaultRating,
		})
	}
	return recommendations, nil
}
