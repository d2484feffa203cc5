package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

var ErrNotFound = errors.New("article not found")

const articleColumns = `id, title, slug, content, topic, category, keywords, image_url, views, reading_time, is_published, created_at, updated_at`

// Хранилище статей поверх sqlx. Запросы пишем с ?, Rebind подставляет плейсхолдеры драйвера
type ArticleStorage struct {
	db *sqlx.DB
}

func NewArticleStorage(db *sqlx.DB) *ArticleStorage {
	return &ArticleStorage{db: db}
}

// Create вставляет статью без слага и возвращает ее id
func (s *ArticleStorage) Create(ctx context.Context, article model.Article) (int64, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = article.CreatedAt
	}

	var id int64

	row := conn.QueryRowxContext(
		ctx,
		s.db.Rebind(`INSERT INTO posts (title, content, topic, category, keywords, image_url, views, reading_time, is_published, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		article.Title,
		article.Content,
		article.Topic,
		article.Category,
		article.Keywords,
		article.ImageURL,
		article.Views,
		article.ReadingTime,
		article.IsPublished,
		article.CreatedAt,
		article.UpdatedAt,
	)

	if err := row.Err(); err != nil {
		return 0, err
	}

	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// MarkPublished проставляет слаг, когда id уже известен, и тем же запросом публикует статью
func (s *ArticleStorage) MarkPublished(ctx context.Context, id int64, slug string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := conn.ExecContext(
		ctx,
		s.db.Rebind(`UPDATE posts SET slug = ?, is_published = ?, updated_at = ? WHERE id = ?`),
		slug,
		true,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *ArticleStorage) ByID(ctx context.Context, id int64) (*model.Article, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var article dbArticle
	err = conn.GetContext(ctx, &article, s.db.Rebind(`SELECT `+articleColumns+` FROM posts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result := article.model()

	return &result, nil
}

// Последние опубликованные статьи, новые сверху
func (s *ArticleStorage) Recent(ctx context.Context, limit int) ([]model.Article, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var articles []dbArticle
	if err := conn.SelectContext(
		ctx,
		&articles,
		s.db.Rebind(`SELECT `+articleColumns+` FROM posts WHERE is_published = ? ORDER BY created_at DESC, id DESC LIMIT ?`),
		true,
		limit,
	); err != nil {
		return nil, err
	}

	return lo.Map(articles, func(article dbArticle, _ int) model.Article {
		return article.model()
	}), nil
}

type Stats struct {
	Total     int64 `db:"total" json:"total_posts"`
	Published int64 `db:"published" json:"published_posts"`
	Views     int64 `db:"views" json:"total_views"`
}

func (s *ArticleStorage) Stats(ctx context.Context) (Stats, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer conn.Close()

	var stats Stats
	if err := conn.GetContext(ctx, &stats, `SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_published THEN 1 ELSE 0 END), 0) AS published,
			COALESCE(SUM(views), 0) AS views
		FROM posts`); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// Внутренняя модель для работы с БД, слаг до MarkPublished пустой (NULL)
type dbArticle struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Slug        sql.NullString `db:"slug"`
	Content     string         `db:"content"`
	Topic       string         `db:"topic"`
	Category    string         `db:"category"`
	Keywords    string         `db:"keywords"`
	ImageURL    string         `db:"image_url"`
	Views       int64          `db:"views"`
	ReadingTime int            `db:"reading_time"`
	IsPublished bool           `db:"is_published"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (a dbArticle) model() model.Article {
	return model.Article{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug.String,
		Content:     a.Content,
		Topic:       a.Topic,
		Category:    a.Category,
		Keywords:    a.Keywords,
		ImageURL:    a.ImageURL,
		Views:       a.Views,
		ReadingTime: a.ReadingTime,
		IsPublished: a.IsPublished,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
