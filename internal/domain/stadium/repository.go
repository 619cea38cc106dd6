package stadium

import "context"

// Repository はスタジアムリポジトリのインターフェース
type Repository interface {
	// Create は新しいスタジアムを作成する
	Create(ctx context.Context, s *Stadium) error

	// GetByID はIDからスタジアムを取得する
	GetByID(ctx context.Context, id string) (*Stadium, error)
}
