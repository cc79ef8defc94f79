package repository

import (
	"context"
	"time"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"gorm.io/gorm"
)

func (s *Store) CreateToken(ctx context.Context, token *models.PaymentToken) error {
	return translate(s.db.WithContext(ctx).Create(token).Error)
}

func (s *Store) FindToken(ctx context.Context, token string) (*models.PaymentToken, error) {
	var t models.PaymentToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindTokenByLinkID resolves any link ever created for a token, not only the latest.
func (s *Store) FindTokenByLinkID(ctx context.Context, linkID string) (*models.PaymentToken, error) {
	var t models.PaymentToken
	err := s.db.WithContext(ctx).
		Select("payment_tokens.*").
		Joins("JOIN payment_links ON payment_links.token_id = payment_tokens.id").
		Where("payment_links.link_id = ?", linkID).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) LatestToken(ctx context.Context, applicationID uint, route payment.Route) (*models.PaymentToken, error) {
	var t models.PaymentToken
	err := s.db.WithContext(ctx).
		Where("application_id = ? AND payment_type = ?", applicationID, route).
		Order("generated_at DESC, id DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) ListTokens(ctx context.Context, applicationID uint) ([]models.PaymentToken, error) {
	var tokens []models.PaymentToken
	err := s.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("generated_at ASC, id ASC").
		Find(&tokens).Error
	return tokens, err
}

// SaveLink records a new link for the token and makes it the token's current one.
func (s *Store) SaveLink(ctx context.Context, tokenID uint, linkID, linkURL string, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentToken{}).Where("id = ?", tokenID).Updates(map[string]interface{}{
			"link_id":         linkID,
			"link_url":        linkURL,
			"link_created_at": at,
			"link_count":      gorm.Expr("link_count + 1"),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		link := &models.PaymentLink{TokenID: tokenID, LinkID: linkID, URL: linkURL, CreatedAt: at}
		return translate(tx.Create(link).Error)
	})
}

func (s *Store) ListLinks(ctx context.Context, tokenID uint) ([]models.PaymentLink, error) {
	var links []models.PaymentLink
	err := s.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("created_at ASC, id ASC").
		Find(&links).Error
	return links, err
}

// MarkTokensUsed flips every still-unused token of the application.
func (s *Store) MarkTokensUsed(ctx context.Context, applicationID uint, at time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.PaymentToken{}).
		Where("application_id = ? AND token_used = ?", applicationID, false).
		Updates(map[string]interface{}{
			"token_used": true,
			"used_at":    at,
		})
	return result.RowsAffected, result.Error
}

// RevokeTokens retires every token of the application that is neither used
// nor already revoked.
func (s *Store) RevokeTokens(ctx context.Context, applicationID uint, at time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.PaymentToken{}).
		Where("application_id = ? AND token_used = ? AND revoked_at IS NULL", applicationID, false).
		Update("revoked_at", at)
	return result.RowsAffected, result.Error
}
