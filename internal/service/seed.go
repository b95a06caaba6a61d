package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

func sampleGames() []models.Product {
	game := func(title, desc, price, category, image string, rating float64, stock int) models.Product {
		return models.Product{
			Title:       title,
			Description: desc,
			Price:       decimal.RequireFromString(price),
			Category:    category,
			ImageURL:    image,
			Rating:      rating,
			Stock:       stock,
		}
	}
	return []models.Product{
		game("The Witcher 3", "Open-world fantasy RPG following Geralt of Rivia.", "39.99", models.CategoryPC, "/images/witcher3.jpg", 4.9, 50),
		game("Cyberpunk 2077", "Open-world action RPG set in Night City.", "59.99", models.CategoryPC, "/images/cyberpunk2077.jpg", 4.2, 40),
		game("Minecraft", "Sandbox game about placing blocks and going on adventures.", "26.95", models.CategoryPC, "/images/minecraft.jpg", 4.8, 100),
		game("Super Mario Odyssey", "3D platformer across kingdoms with Cappy.", "49.99", models.CategoryConsole, "/images/mario-odyssey.jpg", 4.9, 30),
		game("The Legend of Zelda: Breath of the Wild", "Open-air adventure in Hyrule.", "59.99", models.CategoryConsole, "/images/zelda-botw.jpg", 5.0, 25),
		game("God of War", "Kratos and Atreus journey through Norse realms.", "19.99", models.CategoryConsole, "/images/god-of-war.jpg", 4.8, 35),
		game("Call of Duty: Mobile", "Multiplayer shooter built for phones.", "0.00", models.CategoryMobile, "/images/cod-mobile.jpg", 4.3, 1000),
		game("Genshin Impact", "Open-world action RPG with gacha mechanics.", "0.00", models.CategoryMobile, "/images/genshin.jpg", 4.4, 1000),
	}
}

// SeedCatalog inserts the sample games when the catalog is empty.
func (s *CatalogService) SeedCatalog(ctx context.Context) (int, error) {
	n, err := s.Repo.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	games := sampleGames()
	if err := s.Repo.CreateProducts(ctx, games); err != nil {
		return 0, err
	}
	for i := range games {
		if s.Search != nil {
			if err := s.Search.IndexProduct(ctx, &games[i]); err != nil {
				logging.FromContext(ctx).Warn("search_index_error", "product_id", games[i].ID, "error", err)
			}
		}
	}
	return len(games), nil
}
