package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
)

// shareLinkColumns — список столбцов таблицы share_links для SELECT-запросов.
const shareLinkColumns = `token, album_id, permission, expires_at, disabled, created_at`

// ShareLinkRepository — интерфейс доступа к share-ссылкам.
// Запись создаётся действием владельца альбома, читается на каждый
// share-доступ; единственная мутация — установка флага disabled.
type ShareLinkRepository interface {
	// Create вставляет новую share-ссылку.
	Create(ctx context.Context, s *model.ShareLink) error
	// GetByToken возвращает share-ссылку по точному совпадению токена
	// или ErrNotFound.
	GetByToken(ctx context.Context, token string) (*model.ShareLink, error)
	// ListByAlbum возвращает все share-ссылки альбома, новые первыми.
	ListByAlbum(ctx context.Context, albumID string) ([]*model.ShareLink, error)
	// Disable отзывает ссылку (disabled = true). albumID входит в условие,
	// чтобы владелец одного альбома не мог отозвать ссылку чужого.
	Disable(ctx context.Context, albumID, token string) error
}

// shareLinkRepo — реализация ShareLinkRepository через pgx.
type shareLinkRepo struct {
	db DBTX
}

// NewShareLinkRepository создаёт репозиторий share-ссылок.
func NewShareLinkRepository(db DBTX) ShareLinkRepository {
	return &shareLinkRepo{db: db}
}

func (r *shareLinkRepo) Create(ctx context.Context, s *model.ShareLink) error {
	query := `
		INSERT INTO share_links (token, album_id, permission, expires_at, disabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		s.Token, s.AlbumID, s.Permission, s.ExpiresAt, s.Disabled,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания share-ссылки: %w", err)
	}
	return nil
}

func (r *shareLinkRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM share_links WHERE token = $1`, shareLinkColumns)

	s := &model.ShareLink{}
	err := r.db.QueryRow(ctx, query, token).Scan(
		&s.Token, &s.AlbumID, &s.Permission, &s.ExpiresAt, &s.Disabled, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения share-ссылки: %w", err)
	}
	return s, nil
}

func (r *shareLinkRepo) ListByAlbum(ctx context.Context, albumID string) ([]*model.ShareLink, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM share_links WHERE album_id = $1 ORDER BY created_at DESC`,
		shareLinkColumns,
	)

	rows, err := r.db.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения share-ссылок: %w", err)
	}
	defer rows.Close()

	var result []*model.ShareLink
	for rows.Next() {
		s := &model.ShareLink{}
		if err := rows.Scan(
			&s.Token, &s.AlbumID, &s.Permission, &s.ExpiresAt, &s.Disabled, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования share-ссылки: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

func (r *shareLinkRepo) Disable(ctx context.Context, albumID, token string) error {
	query := `
		UPDATE share_links
		SET disabled = true
		WHERE token = $1 AND album_id = $2 AND disabled = false`

	tag, err := r.db.Exec(ctx, query, token, albumID)
	if err != nil {
		return fmt.Errorf("ошибка отзыва share-ссылки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
