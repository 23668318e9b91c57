package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
)

// albumColumns — список столбцов таблицы albums для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const albumColumns = `id, owner_id, title, description, cover_photo_id,
	is_public, category, created_at, updated_at`

// AlbumRepository — интерфейс доступа к альбомам.
type AlbumRepository interface {
	// Create вставляет новый альбом.
	Create(ctx context.Context, a *model.Album) error
	// GetByID возвращает альбом по UUID или ErrNotFound.
	GetByID(ctx context.Context, albumID string) (*model.Album, error)
	// ListByOwner возвращает альбомы владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Album, error)
	// Update обновляет изменяемые поля альбома (title, description,
	// cover_photo_id, is_public, category) и updated_at.
	Update(ctx context.Context, a *model.Album) error
	// Delete удаляет альбом. Фотографии и share-ссылки удаляются каскадно
	// (ON DELETE CASCADE в схеме).
	Delete(ctx context.Context, albumID string) error
}

// albumRepo — реализация AlbumRepository через pgx.
type albumRepo struct {
	db DBTX
}

// NewAlbumRepository создаёт репозиторий альбомов.
func NewAlbumRepository(db DBTX) AlbumRepository {
	return &albumRepo{db: db}
}

func (r *albumRepo) Create(ctx context.Context, a *model.Album) error {
	query := `
		INSERT INTO albums (id, owner_id, title, description, cover_photo_id, is_public, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.OwnerID, a.Title, a.Description, a.CoverPhotoID, a.IsPublic, a.Category,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания альбома: %w", err)
	}
	return nil
}

func (r *albumRepo) GetByID(ctx context.Context, albumID string) (*model.Album, error) {
	query := fmt.Sprintf(`SELECT %s FROM albums WHERE id = $1`, albumColumns)

	a := &model.Album{}
	err := r.db.QueryRow(ctx, query, albumID).Scan(
		&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.CoverPhotoID,
		&a.IsPublic, &a.Category, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения альбома: %w", err)
	}
	return a, nil
}

func (r *albumRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Album, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM albums WHERE owner_id = $1 ORDER BY created_at DESC`,
		albumColumns,
	)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения альбомов: %w", err)
	}
	defer rows.Close()

	var result []*model.Album
	for rows.Next() {
		a := &model.Album{}
		if err := rows.Scan(
			&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.CoverPhotoID,
			&a.IsPublic, &a.Category, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования альбома: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

func (r *albumRepo) Update(ctx context.Context, a *model.Album) error {
	query := `
		UPDATE albums
		SET title = $2, description = $3, cover_photo_id = $4,
			is_public = $5, category = $6, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		a.ID, a.Title, a.Description, a.CoverPhotoID, a.IsPublic, a.Category,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления альбома: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *albumRepo) Delete(ctx context.Context, albumID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM albums WHERE id = $1`, albumID)
	if err != nil {
		return fmt.Errorf("ошибка удаления альбома: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
