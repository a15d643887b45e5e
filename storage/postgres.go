package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"collectrip/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// =============================================================================
// Contents
// =============================================================================

const contentColumns = `content_id, content_type_id, title, addr1, addr2, cat1, cat2, cat3,
	areacode, sigungu_code, dong_region_code, dong_sigungu_code, map_x, map_y,
	first_image, first_image2, zipcode, created_at, updated_at`

func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	err := row.Scan(
		&c.ContentID, &c.ContentTypeID, &c.Title, &c.Addr1, &c.Addr2, &c.Cat1, &c.Cat2, &c.Cat3,
		&c.AreaCode, &c.SigunguCode, &c.DongRegnCode, &c.DongSignguCode, &c.MapX, &c.MapY,
		&c.FirstImage, &c.FirstImage2, &c.Zipcode, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) GetContent(ctx context.Context, contentID int64) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE content_id = $1`
	return scanContent(s.pool.QueryRow(ctx, query, contentID))
}

func (s *PostgresStore) UpsertContent(ctx context.Context, c *models.Content) error {
	query := `
		INSERT INTO content (
			content_id, content_type_id, title, addr1, addr2, cat1, cat2, cat3,
			areacode, sigungu_code, dong_region_code, dong_sigungu_code, map_x, map_y,
			first_image, first_image2, zipcode, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW()
		)
		ON CONFLICT (content_id) DO UPDATE SET
			content_type_id = EXCLUDED.content_type_id,
			title = EXCLUDED.title,
			addr1 = EXCLUDED.addr1,
			addr2 = EXCLUDED.addr2,
			cat1 = EXCLUDED.cat1,
			cat2 = EXCLUDED.cat2,
			cat3 = EXCLUDED.cat3,
			areacode = EXCLUDED.areacode,
			sigungu_code = EXCLUDED.sigungu_code,
			dong_region_code = EXCLUDED.dong_region_code,
			dong_sigungu_code = EXCLUDED.dong_sigungu_code,
			map_x = EXCLUDED.map_x,
			map_y = EXCLUDED.map_y,
			first_image = EXCLUDED.first_image,
			first_image2 = EXCLUDED.first_image2,
			zipcode = EXCLUDED.zipcode,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		c.ContentID, c.ContentTypeID, c.Title, c.Addr1, c.Addr2, c.Cat1, c.Cat2, c.Cat3,
		c.AreaCode, c.SigunguCode, c.DongRegnCode, c.DongSignguCode, c.MapX, c.MapY,
		c.FirstImage, c.FirstImage2, c.Zipcode,
	)
	return err
}

// ContentFilter narrows ListContents. Zero values mean no filter.
type ContentFilter struct {
	AreaCode      string
	ContentTypeID int
	Cat2          string
	Limit         int
	Offset        int
}

func (s *PostgresStore) ListContents(ctx context.Context, f ContentFilter) ([]models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE 1=1`
	var args []interface{}

	if f.AreaCode != "" {
		args = append(args, f.AreaCode)
		query += fmt.Sprintf(" AND areacode = $%d", len(args))
	}
	if f.ContentTypeID > 0 {
		args = append(args, f.ContentTypeID)
		query += fmt.Sprintf(" AND content_type_id = $%d", len(args))
	}
	if f.Cat2 != "" {
		args = append(args, f.Cat2)
		query += fmt.Sprintf(" AND cat2 = $%d", len(args))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY content_id LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		var c models.Content
		if err := rows.Scan(
			&c.ContentID, &c.ContentTypeID, &c.Title, &c.Addr1, &c.Addr2, &c.Cat1, &c.Cat2, &c.Cat3,
			&c.AreaCode, &c.SigunguCode, &c.DongRegnCode, &c.DongSignguCode, &c.MapX, &c.MapY,
			&c.FirstImage, &c.FirstImage2, &c.Zipcode, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

// =============================================================================
// Detail variants
// =============================================================================

const detailCommonColumns = `content_id, content_type_id, dong_region_code, dong_sigungu_code,
	addr1, addr2, zipcode, first_image, first_image2, map_x, map_y`

const detailUpdateSet = `
		content_type_id = EXCLUDED.content_type_id,
		dong_region_code = EXCLUDED.dong_region_code,
		dong_sigungu_code = EXCLUDED.dong_sigungu_code,
		addr1 = EXCLUDED.addr1,
		addr2 = EXCLUDED.addr2,
		zipcode = EXCLUDED.zipcode,
		first_image = EXCLUDED.first_image,
		first_image2 = EXCLUDED.first_image2,
		map_x = EXCLUDED.map_x,
		map_y = EXCLUDED.map_y,
		updated_at = NOW()`

func detailCommonArgs(c *models.DetailCommon) []interface{} {
	return []interface{}{
		c.ContentID, c.ContentTypeID, c.DongRegnCode, c.DongSignguCode,
		c.Addr1, c.Addr2, c.Zipcode, c.FirstImage, c.FirstImage2, c.MapX, c.MapY,
	}
}

// UpsertDetail writes the variant row matching the detail's kind, keyed by
// content_id like its parent.
func (s *PostgresStore) UpsertDetail(ctx context.Context, d models.Detail) error {
	switch v := d.(type) {
	case *models.TouristAttraction:
		query := `
			INSERT INTO tourist_attraction (` + detailCommonColumns + `, info_center, rest_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				info_center = EXCLUDED.info_center,
				rest_date = EXCLUDED.rest_date`
		args := append(detailCommonArgs(v.Common()), v.InfoCenter, v.RestDate)
		_, err := s.pool.Exec(ctx, query, args...)
		return err

	case *models.Culture:
		query := `
			INSERT INTO culture (` + detailCommonColumns + `, info_center, use_fee, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				info_center = EXCLUDED.info_center,
				use_fee = EXCLUDED.use_fee`
		args := append(detailCommonArgs(v.Common()), v.InfoCenter, v.UseFee)
		_, err := s.pool.Exec(ctx, query, args...)
		return err

	case *models.Festival:
		query := `
			INSERT INTO festival (` + detailCommonColumns + `, event_startdate, event_enddate, play_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				event_startdate = EXCLUDED.event_startdate,
				event_enddate = EXCLUDED.event_enddate,
				play_time = EXCLUDED.play_time`
		args := append(detailCommonArgs(v.Common()), v.EventStartDate, v.EventEndDate, v.PlayTime)
		_, err := s.pool.Exec(ctx, query, args...)
		return err

	case *models.Course:
		query := `
			INSERT INTO course (` + detailCommonColumns + `, distance, take_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				distance = EXCLUDED.distance,
				take_time = EXCLUDED.take_time`
		args := append(detailCommonArgs(v.Common()), v.Distance, v.TakeTime)
		_, err := s.pool.Exec(ctx, query, args...)
		return err

	case *models.Leports:
		query := `
			INSERT INTO leports (` + detailCommonColumns + `, info_center, open_period, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				info_center = EXCLUDED.info_center,
				open_period = EXCLUDED.open_period`
		args := append(detailCommonArgs(v.Common()), v.InfoCenter, v.OpenPeriod)
		_, err := s.pool.Exec(ctx, query, args...)
		return err

	case *models.Shopping:
		query := `
			INSERT INTO shopping (` + detailCommonColumns + `, sale_item, open_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				sale_item = EXCLUDED.sale_item,
				open_time = EXCLUDED.open_time`
		args := append(detailCommonArgs(v.Common()), v.SaleItem, v.OpenTime)
		_, err := s.pool.Exec(ctx, query, args...)
		return err

	case *models.FoodStore:
		query := `
			INSERT INTO food_store (` + detailCommonColumns + `, kids_facility, first_menu, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			ON CONFLICT (content_id) DO UPDATE SET` + detailUpdateSet + `,
				kids_facility = EXCLUDED.kids_facility,
				first_menu = EXCLUDED.first_menu`
		args := append(detailCommonArgs(v.Common()), v.KidsFacility, v.FirstMenu)
		_, err := s.pool.Exec(ctx, query, args...)
		return err
	}

	return fmt.Errorf("unknown detail kind %s", d.Kind())
}

// detailTables maps a content type to its variant table. Each content type
// stores at most one variant.
var detailTables = map[int]struct {
	table string
	kind  models.DetailKind
}{
	12: {"tourist_attraction", models.KindTouristAttraction},
	14: {"culture", models.KindCulture},
	15: {"festival", models.KindFestival},
	25: {"course", models.KindCourse},
	28: {"leports", models.KindLeports},
	38: {"shopping", models.KindShopping},
	39: {"food_store", models.KindFoodStore},
}

// GetDetail returns the detail variant for a content, or nil when none is
// stored (classification miss or unmapped content type).
func (s *PostgresStore) GetDetail(ctx context.Context, contentID int64, contentTypeID int) (models.Detail, error) {
	entry, ok := detailTables[contentTypeID]
	if !ok {
		return nil, nil
	}

	var (
		d     models.Detail
		extra [3]interface{}
		cols  string
	)
	switch entry.kind {
	case models.KindTouristAttraction:
		v := &models.TouristAttraction{}
		cols, extra[0], extra[1] = "info_center, rest_date", &v.InfoCenter, &v.RestDate
		d = v
	case models.KindCulture:
		v := &models.Culture{}
		cols, extra[0], extra[1] = "info_center, use_fee", &v.InfoCenter, &v.UseFee
		d = v
	case models.KindFestival:
		v := &models.Festival{}
		cols, extra[0], extra[1], extra[2] = "event_startdate, event_enddate, play_time",
			&v.EventStartDate, &v.EventEndDate, &v.PlayTime
		d = v
	case models.KindCourse:
		v := &models.Course{}
		cols, extra[0], extra[1] = "distance, take_time", &v.Distance, &v.TakeTime
		d = v
	case models.KindLeports:
		v := &models.Leports{}
		cols, extra[0], extra[1] = "info_center, open_period", &v.InfoCenter, &v.OpenPeriod
		d = v
	case models.KindShopping:
		v := &models.Shopping{}
		cols, extra[0], extra[1] = "sale_item, open_time", &v.SaleItem, &v.OpenTime
		d = v
	case models.KindFoodStore:
		v := &models.FoodStore{}
		cols, extra[0], extra[1] = "kids_facility, first_menu", &v.KidsFacility, &v.FirstMenu
		d = v
	}

	query := `SELECT ` + detailCommonColumns + `, ` + cols + `, created_at, updated_at FROM ` +
		entry.table + ` WHERE content_id = $1`

	c := d.Common()
	dest := []interface{}{
		&c.ContentID, &c.ContentTypeID, &c.DongRegnCode, &c.DongSignguCode,
		&c.Addr1, &c.Addr2, &c.Zipcode, &c.FirstImage, &c.FirstImage2, &c.MapX, &c.MapY,
	}
	for _, e := range extra {
		if e != nil {
			dest = append(dest, e)
		}
	}
	dest = append(dest, &c.CreatedAt, &c.UpdatedAt)

	err := s.pool.QueryRow(ctx, query, contentID).Scan(dest...)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// =============================================================================
// Import runs
// =============================================================================

func (s *PostgresStore) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	query := `
		INSERT INTO import_runs (selection, started_at, status, attempted, created, updated, skipped, failed, details_stored, dry_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		run.Selection, run.StartedAt, run.Status, run.Attempted, run.Created, run.Updated,
		run.Skipped, run.Failed, run.DetailsStored, run.DryRun,
	).Scan(&run.ID)
}

func (s *PostgresStore) UpdateImportRun(ctx context.Context, run *models.ImportRun) error {
	query := `
		UPDATE import_runs SET
			finished_at = $2, status = $3, attempted = $4, created = $5, updated = $6,
			skipped = $7, failed = $8, details_stored = $9
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.Attempted, run.Created, run.Updated,
		run.Skipped, run.Failed, run.DetailsStored,
	)
	return err
}

// =============================================================================
// Users
// =============================================================================

const userColumns = `user_id, kakao_id, nickname, profile_image, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UserID, &u.KakaoID, &u.Nickname, &u.ProfileImage, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByKakaoID(ctx context.Context, kakaoID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE kakao_id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, kakaoID))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, userID))
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (user_id, kakao_id, nickname, profile_image, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := s.pool.Exec(ctx, query, u.UserID, u.KakaoID, u.Nickname, u.ProfileImage, u.IsActive)
	return err
}

func (s *PostgresStore) UpdateUserNickname(ctx context.Context, userID uuid.UUID, nickname string) error {
	query := `UPDATE users SET nickname = $2, updated_at = NOW() WHERE user_id = $1`
	_, err := s.pool.Exec(ctx, query, userID, nickname)
	return err
}

// NicknameExists reports whether any user other than exclude holds nickname.
// Pass uuid.Nil to check against everyone.
func (s *PostgresStore) NicknameExists(ctx context.Context, nickname string, exclude uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE nickname = $1 AND user_id <> $2)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, nickname, exclude).Scan(&exists)
	return exists, err
}

// =============================================================================
// Collectors
// =============================================================================

const collectorColumns = `id, user_id, content_id, verified_by, verified_lat, verified_lng,
	image_url, photo_status, photo_attempts, verified_at, created_at`

func scanCollector(row pgx.Row) (*models.Collector, error) {
	var c models.Collector
	err := row.Scan(&c.ID, &c.UserID, &c.ContentID, &c.VerifiedBy, &c.VerifiedLat, &c.VerifiedLng,
		&c.ImageURL, &c.PhotoStatus, &c.PhotoAttempts, &c.VerifiedAt, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) GetCollector(ctx context.Context, userID uuid.UUID, contentID int64) (*models.Collector, error) {
	query := `SELECT ` + collectorColumns + ` FROM collectors WHERE user_id = $1 AND content_id = $2`
	return scanCollector(s.pool.QueryRow(ctx, query, userID, contentID))
}

func (s *PostgresStore) CreateCollector(ctx context.Context, c *models.Collector) error {
	query := `
		INSERT INTO collectors (user_id, content_id, verified_by, verified_lat, verified_lng,
			image_url, photo_status, photo_attempts, verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		c.UserID, c.ContentID, c.VerifiedBy, c.VerifiedLat, c.VerifiedLng,
		c.ImageURL, c.PhotoStatus, c.PhotoAttempts, c.VerifiedAt,
	).Scan(&c.ID)
}

func (s *PostgresStore) ListCollectorsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Collector, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + collectorColumns + ` FROM collectors
		WHERE user_id = $1 ORDER BY verified_at DESC LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collectors []models.Collector
	for rows.Next() {
		var c models.Collector
		if err := rows.Scan(&c.ID, &c.UserID, &c.ContentID, &c.VerifiedBy, &c.VerifiedLat, &c.VerifiedLng,
			&c.ImageURL, &c.PhotoStatus, &c.PhotoAttempts, &c.VerifiedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, rows.Err()
}

func (s *PostgresStore) GetPendingPhotoCollectors(ctx context.Context, limit int) ([]models.Collector, error) {
	query := `SELECT ` + collectorColumns + ` FROM collectors
		WHERE photo_status = 'pending' AND photo_attempts < 3
		ORDER BY created_at LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collectors []models.Collector
	for rows.Next() {
		var c models.Collector
		if err := rows.Scan(&c.ID, &c.UserID, &c.ContentID, &c.VerifiedBy, &c.VerifiedLat, &c.VerifiedLng,
			&c.ImageURL, &c.PhotoStatus, &c.PhotoAttempts, &c.VerifiedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, rows.Err()
}

func (s *PostgresStore) UpdateCollectorPhoto(ctx context.Context, id int64, status, imageURL string, attempts int) error {
	query := `UPDATE collectors SET photo_status = $2, image_url = COALESCE(NULLIF($3, ''), image_url), photo_attempts = $4 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status, imageURL, attempts)
	return err
}

// CountCollectorsByArea counts a user's check-ins on contents in one area.
// areaCode 0 counts across all areas.
func (s *PostgresStore) CountCollectorsByArea(ctx context.Context, userID uuid.UUID, areaCode int) (int, error) {
	var (
		count int
		err   error
	)
	if areaCode > 0 {
		query := `
			SELECT COUNT(*) FROM collectors co
			JOIN content c ON c.content_id = co.content_id
			WHERE co.user_id = $1 AND c.areacode = $2`
		err = s.pool.QueryRow(ctx, query, userID, fmt.Sprintf("%d", areaCode)).Scan(&count)
	} else {
		query := `SELECT COUNT(*) FROM collectors WHERE user_id = $1`
		err = s.pool.QueryRow(ctx, query, userID).Scan(&count)
	}
	return count, err
}

// ListUsersWithCheckinsSince returns distinct users who checked in after t.
func (s *PostgresStore) ListUsersWithCheckinsSince(ctx context.Context, t time.Time) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM collectors WHERE created_at >= $1`

	rows, err := s.pool.Query(ctx, query, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// Badges
// =============================================================================

func (s *PostgresStore) UpsertBadge(ctx context.Context, b *models.Badge) error {
	query := `
		INSERT INTO badges (badge_id, name, image_url, condition, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (badge_id) DO UPDATE SET
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url,
			condition = EXCLUDED.condition,
			description = EXCLUDED.description`

	_, err := s.pool.Exec(ctx, query, b.BadgeID, b.Name, b.ImageURL, b.Condition, b.Description)
	return err
}

func (s *PostgresStore) ListBadges(ctx context.Context) ([]models.Badge, error) {
	query := `SELECT badge_id, name, image_url, condition, description, created_at FROM badges ORDER BY badge_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.BadgeID, &b.Name, &b.ImageURL, &b.Condition, &b.Description, &b.CreatedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// CreateUserBadge awards a badge; a duplicate award is a silent no-op.
func (s *PostgresStore) CreateUserBadge(ctx context.Context, ub *models.UserBadge) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query, ub.UserID, ub.BadgeID, ub.AwardedAt)
	return err
}

func (s *PostgresStore) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	query := `SELECT id, user_id, badge_id, awarded_at FROM user_badges WHERE user_id = $1 ORDER BY awarded_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.AwardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}

func (s *PostgresStore) HasUserBadge(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_badges WHERE user_id = $1 AND badge_id = $2)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, userID, badgeID).Scan(&exists)
	return exists, err
}
