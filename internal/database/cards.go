// internal/database/cards.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/lucasbarros/cardclash/internal/models"
)

// defaultCards is the seeded catalog: every category at powers 1 through 6.
var defaultCards = map[string][]int{
	models.CategoryRock:     {1, 2, 3, 4, 5, 6},
	models.CategoryPaper:    {1, 2, 3, 4, 5, 6},
	models.CategoryScissors: {1, 2, 3, 4, 5, 6},
}

// SeedCards populates card_definitions with the default catalog. It is a
// no-op when the table already has rows, unless reset is set, in which case
// the existing definitions are dropped first.
func SeedCards(ctx context.Context, reset bool) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if reset {
			tag, err := tx.Exec(ctx, `DELETE FROM card_definitions`)
			if err != nil {
				return fmt.Errorf("reset card definitions: %w", err)
			}
			log.Infof("card seed reset: deleted %d existing definitions", tag.RowsAffected())
		}

		var existing int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM card_definitions`).Scan(&existing); err != nil {
			return fmt.Errorf("count card definitions: %w", err)
		}
		if existing > 0 {
			log.Infof("cards already initialized (%d found), skipping seed", existing)
			return nil
		}

		inserted := 0
		for category, powers := range defaultCards {
			for _, power := range powers {
				_, err := tx.Exec(ctx,
					`INSERT INTO card_definitions (category, power, active) VALUES ($1, $2, TRUE)`,
					category, power,
				)
				if err != nil {
					return fmt.Errorf("insert card definition: %w", err)
				}
				inserted++
			}
		}
		log.Infof("seeded %d card definitions", inserted)
		return nil
	})
}

// AllCardDefinitions returns the full catalog, active or not, ordered by id.
func AllCardDefinitions(ctx context.Context) ([]models.CardDefinition, error) {
	rows, err := DB.Query(ctx,
		`SELECT id, category, power, active FROM card_definitions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCardDefinitions(rows)
}

// GetCardDefinition returns a single catalog entry, or (nil, nil) when the id
// is unknown.
func GetCardDefinition(ctx context.Context, id int) (*models.CardDefinition, error) {
	var def models.CardDefinition
	err := DB.QueryRow(ctx,
		`SELECT id, category, power, active FROM card_definitions WHERE id=$1`, id).
		Scan(&def.ID, &def.Category, &def.Power, &def.Active)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func scanCardDefinitions(rows pgx.Rows) ([]models.CardDefinition, error) {
	var defs []models.CardDefinition
	for rows.Next() {
		var def models.CardDefinition
		if err := rows.Scan(&def.ID, &def.Category, &def.Power, &def.Active); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}
