package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
)

// photoColumns — список столбцов таблицы photos для SELECT-запросов.
const photoColumns = `id, album_id, storage_key, thumb_key, caption,
	content_type, size, created_at`

// PhotoRepository — интерфейс доступа к фотографиям.
type PhotoRepository interface {
	// Create вставляет новую фотографию.
	Create(ctx context.Context, p *model.Photo) error
	// GetByID возвращает фотографию по UUID или ErrNotFound.
	GetByID(ctx context.Context, photoID string) (*model.Photo, error)
	// ListByAlbum возвращает все фотографии альбома, отсортированные по
	// created_at по возрастанию — это контракт порядка показа для
	// shared-просмотров. Пустой срез — валидный результат.
	ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error)
	// Delete удаляет фотографию.
	Delete(ctx context.Context, photoID string) error
}

// photoRepo — реализация PhotoRepository через pgx.
type photoRepo struct {
	db DBTX
}

// NewPhotoRepository создаёт репозиторий фотографий.
func NewPhotoRepository(db DBTX) PhotoRepository {
	return &photoRepo{db: db}
}

func (r *photoRepo) Create(ctx context.Context, p *model.Photo) error {
	query := `
		INSERT INTO photos (id, album_id, storage_key, thumb_key, caption, content_type, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.AlbumID, p.StorageKey, p.ThumbKey, p.Caption, p.ContentType, p.Size,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания фотографии: %w", err)
	}
	return nil
}

func (r *photoRepo) GetByID(ctx context.Context, photoID string) (*model.Photo, error) {
	query := fmt.Sprintf(`SELECT %s FROM photos WHERE id = $1`, photoColumns)

	p := &model.Photo{}
	err := r.db.QueryRow(ctx, query, photoID).Scan(
		&p.ID, &p.AlbumID, &p.StorageKey, &p.ThumbKey, &p.Caption,
		&p.ContentType, &p.Size, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения фотографии: %w", err)
	}
	return p, nil
}

func (r *photoRepo) ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM photos WHERE album_id = $1 ORDER BY created_at ASC`,
		photoColumns,
	)

	rows, err := r.db.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения фотографий: %w", err)
	}
	defer rows.Close()

	var result []*model.Photo
	for rows.Next() {
		p := &model.Photo{}
		if err := rows.Scan(
			&p.ID, &p.AlbumID, &p.StorageKey, &p.ThumbKey, &p.Caption,
			&p.ContentType, &p.Size, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования фотографии: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

func (r *photoRepo) Delete(ctx context.Context, photoID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, photoID)
	if err != nil {
		return fmt.Errorf("ошибка удаления фотографии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
