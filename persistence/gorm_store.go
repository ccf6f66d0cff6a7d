package persistence

import (
	"context"
	"database/sql"
	"errors"
	"planboard/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// ChecklistItemRecord is the row form of an activity checklist entry.
// Position is one-based, a zero primary key would be left out of the insert.
type ChecklistItemRecord struct {
	ActivityID  types.ID `gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Position    int      `gorm:"primary_key;auto_increment:false" sql:"type:INT NOT NULL"`
	Description string
	Done        bool
}

func (ChecklistItemRecord) TableName() string {
	return "activity_checklist_items"
}

// AutoMigrate creates or updates every table the gorm store uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Project{}, &domain.ProjectMember{}, &domain.Stage{}, &domain.Activity{},
		&ChecklistItemRecord{}, &domain.User{}, &domain.Area{}, &domain.Tag{}).Error
}

// GormStore is the relational implementation of the persistence port.
type GormStore struct {
	ds *DataSourceManager
}

func NewGormStore(ds *DataSourceManager) *GormStore {
	return &GormStore{ds: ds}
}

func (s *GormStore) Repositories(ctx context.Context) Repositories {
	return &gormRepos{db: s.ds.GormDB(ctx)}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	return s.ds.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepos{db: tx})
	})
}

// ReadTransaction runs fn in a read-only repeatable-read transaction which is always rolled back.
func (s *GormStore) ReadTransaction(ctx context.Context, fn func(tx Repositories) error) error {
	tx := s.ds.GormDB(ctx).BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()
	return fn(&gormRepos{db: tx})
}

type gormRepos struct {
	db *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *gormRepos) GetProject(id types.ID) (*domain.Project, error) {
	p := domain.Project{}
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	projects := []domain.Project{p}
	if err := r.loadTeams(projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (r *gormRepos) loadTeams(projects []domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]types.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	var members []domain.ProjectMember
	if err := r.db.Where("project_id IN (?)", ids).Order("position ASC").Find(&members).Error; err != nil {
		return err
	}
	teams := map[types.ID][]types.ID{}
	for _, m := range members {
		teams[m.ProjectID] = append(teams[m.ProjectID], m.UserID)
	}
	for i := range projects {
		projects[i].Team = teams[projects[i].ID]
	}
	return nil
}

func (r *gormRepos) SaveProject(p *domain.Project) error {
	if err := r.db.Save(p).Error; err != nil {
		return err
	}
	if err := r.db.Delete(domain.ProjectMember{}, "project_id = ?", p.ID).Error; err != nil {
		return err
	}
	for i, userID := range p.Team {
		if err := r.db.Create(&domain.ProjectMember{ProjectID: p.ID, UserID: userID, Position: i}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *gormRepos) DeleteProject(id types.ID) error {
	if err := r.db.Delete(domain.ProjectMember{}, "project_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(domain.Project{}, "id = ?", id).Error
}

func (r *gormRepos) ListProjects(q *domain.ProjectQuery) ([]domain.Project, error) {
	if q == nil {
		q = &domain.ProjectQuery{}
	}
	db := r.db.Model(&domain.Project{})
	if q.Name != "" {
		db = db.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}
	if q.MemberID != 0 {
		var projectIds []types.ID
		if err := r.db.Model(&domain.ProjectMember{}).Where("user_id = ?", q.MemberID).
			Pluck("project_id", &projectIds).Error; err != nil {
			return nil, err
		}
		if len(projectIds) == 0 {
			return []domain.Project{}, nil
		}
		db = db.Where("id IN (?)", projectIds)
	}
	switch q.Archived {
	case domain.ArchiveStateAll:
	case domain.ArchiveStateOn:
		db = db.Where("archived = ?", true)
	default:
		db = db.Where("archived = ?", false)
	}

	projects := []domain.Project{}
	if err := db.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	if err := r.loadTeams(projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *gormRepos) GetStage(id types.ID) (*domain.Stage, error) {
	s := domain.Stage{}
	if err := r.db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *gormRepos) SaveStage(s *domain.Stage) error {
	return r.db.Save(s).Error
}

func (r *gormRepos) DeleteStage(id types.ID) error {
	return r.db.Delete(domain.Stage{}, "id = ?", id).Error
}

func (r *gormRepos) ListStages(projectID types.ID) ([]domain.Stage, error) {
	stages := []domain.Stage{}
	if err := r.db.Where("project_id = ?", projectID).Order("position ASC").Order("id ASC").Find(&stages).Error; err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *gormRepos) GetActivity(id types.ID) (*domain.Activity, error) {
	a := domain.Activity{}
	if err := r.db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	activities := []domain.Activity{a}
	if err := r.loadChecklists(activities); err != nil {
		return nil, err
	}
	return &activities[0], nil
}

func (r *gormRepos) loadChecklists(activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	ids := make([]types.ID, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}
	var records []ChecklistItemRecord
	if err := r.db.Where("activity_id IN (?)", ids).Order("position ASC").Find(&records).Error; err != nil {
		return err
	}
	items := map[types.ID][]domain.ChecklistItem{}
	for _, record := range records {
		items[record.ActivityID] = append(items[record.ActivityID],
			domain.ChecklistItem{Description: record.Description, Done: record.Done})
	}
	for i := range activities {
		activities[i].Checklist = items[activities[i].ID]
	}
	return nil
}

func (r *gormRepos) SaveActivity(a *domain.Activity) error {
	if err := r.db.Save(a).Error; err != nil {
		return err
	}
	if err := r.db.Delete(ChecklistItemRecord{}, "activity_id = ?", a.ID).Error; err != nil {
		return err
	}
	for i, item := range a.Checklist {
		record := ChecklistItemRecord{ActivityID: a.ID, Position: i + 1, Description: item.Description, Done: item.Done}
		if err := r.db.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *gormRepos) DeleteActivity(id types.ID) error {
	if err := r.db.Delete(ChecklistItemRecord{}, "activity_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(domain.Activity{}, "id = ?", id).Error
}

func (r *gormRepos) ListActivities(stageID types.ID) ([]domain.Activity, error) {
	activities := []domain.Activity{}
	if err := r.db.Where("stage_id = ?", stageID).Order("create_time ASC").Order("id ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	if err := r.loadChecklists(activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *gormRepos) GetUser(id types.ID) (*domain.User, error) {
	u := domain.User{}
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormRepos) FindUserByEmail(email string) (*domain.User, error) {
	u := domain.User{}
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormRepos) SaveUser(u *domain.User) error {
	return r.db.Save(u).Error
}

func (r *gormRepos) DeleteUser(id types.ID) error {
	return r.db.Delete(domain.User{}, "id = ?", id).Error
}

func (r *gormRepos) ListUsers() ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormRepos) GetArea(id types.ID) (*domain.Area, error) {
	a := domain.Area{}
	if err := r.db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *gormRepos) FindAreaByName(name string) (*domain.Area, error) {
	a := domain.Area{}
	if err := r.db.Where("name = ?", name).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *gormRepos) SaveArea(a *domain.Area) error {
	return r.db.Save(a).Error
}

func (r *gormRepos) DeleteArea(id types.ID) error {
	return r.db.Delete(domain.Area{}, "id = ?", id).Error
}

func (r *gormRepos) ListAreas() ([]domain.Area, error) {
	areas := []domain.Area{}
	if err := r.db.Order("id ASC").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *gormRepos) GetTag(id types.ID) (*domain.Tag, error) {
	t := domain.Tag{}
	if err := r.db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *gormRepos) FindTagByName(name string) (*domain.Tag, error) {
	t := domain.Tag{}
	if err := r.db.Where("name = ?", name).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *gormRepos) SaveTag(t *domain.Tag) error {
	return r.db.Save(t).Error
}

func (r *gormRepos) DeleteTag(id types.ID) error {
	return r.db.Delete(domain.Tag{}, "id = ?", id).Error
}

func (r *gormRepos) ListTags() ([]domain.Tag, error) {
	tags := []domain.Tag{}
	if err := r.db.Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
