package account

import (
	"context"
	"errors"
	"planboard/common"
	"planboard/domain"
	"planboard/persistence"
	"planboard/security"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

type AccountManagerTraits interface {
	QueryUsers(ctx context.Context) ([]domain.UserInfo, error)
	CreateUser(ctx context.Context, c *domain.UserCreation) (*domain.UserInfo, error)
	UpdateUser(ctx context.Context, id types.ID, c *domain.UserUpdating) (*domain.UserInfo, error)
	DeleteUser(ctx context.Context, id types.ID) error
}

// AccountManager maintains users. Sessions of a deleted or changed user are dropped through revoke.
type AccountManager struct {
	store    persistence.Store
	idWorker *sonyflake.Sonyflake
	revoke   func(userID types.ID)
}

func NewAccountManager(store persistence.Store, revoke func(userID types.ID)) *AccountManager {
	if revoke == nil {
		revoke = func(types.ID) {}
	}
	return &AccountManager{store: store, idWorker: common.NewIdWorker(), revoke: revoke}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *AccountManager) QueryUsers(ctx context.Context) ([]domain.UserInfo, error) {
	users, err := m.store.Repositories(ctx).ListUsers()
	if err != nil {
		return nil, err
	}
	infos := make([]domain.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Info())
	}
	return infos, nil
}

func (m *AccountManager) CreateUser(ctx context.Context, c *domain.UserCreation) (*domain.UserInfo, error) {
	if err := domain.ValidateCommand(c); err != nil {
		return nil, err
	}
	secret, err := security.HashSecret(c.Password)
	if err != nil {
		return nil, err
	}
	user := domain.User{ID: common.NextId(m.idWorker), Name: c.Name, Email: normalizeEmail(c.Email), Role: c.Role,
		Secret: secret, CreateTime: types.CurrentTimestamp()}

	err = m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		if _, err := tx.FindUserByEmail(user.Email); err == nil {
			return domain.NewConflictError("email '%s' is already registered", user.Email)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.SaveUser(&user)
	})
	if err != nil {
		return nil, err
	}
	common.Log.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role}).Info("user created")
	info := user.Info()
	return &info, nil
}

func (m *AccountManager) UpdateUser(ctx context.Context, id types.ID, c *domain.UserUpdating) (*domain.UserInfo, error) {
	if err := domain.ValidateCommand(c); err != nil {
		return nil, err
	}
	var (
		user          *domain.User
		secretChanged bool
		roleChanged   bool
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		var err error
		user, err = tx.GetUser(id)
		if err != nil {
			return notFound(err, "user", id)
		}
		if c.Name != nil {
			user.Name = *c.Name
		}
		if c.Password != nil {
			if user.Secret, err = security.HashSecret(*c.Password); err != nil {
				return err
			}
			secretChanged = true
		}
		if c.Role != nil && *c.Role != user.Role {
			if user.Role == domain.RoleAdmin {
				if err := checkOtherAdmin(tx, id); err != nil {
					return err
				}
			}
			user.Role = *c.Role
			roleChanged = true
		}
		return tx.SaveUser(user)
	})
	if err != nil {
		return nil, err
	}
	if secretChanged || roleChanged {
		m.revoke(id)
	}
	common.Log.WithFields(logrus.Fields{"userId": id, "role": user.Role}).Info("user updated")
	info := user.Info()
	return &info, nil
}

// DeleteUser refuses to delete a user still on a project team, assigned to an activity or the last admin.
func (m *AccountManager) DeleteUser(ctx context.Context, id types.ID) error {
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		user, err := tx.GetUser(id)
		if err != nil {
			return notFound(err, "user", id)
		}
		projects, err := tx.ListProjects(&domain.ProjectQuery{MemberID: id, Archived: domain.ArchiveStateAll})
		if err != nil {
			return err
		}
		if len(projects) > 0 {
			return domain.NewConflictError("user '%s' is a member of project '%s'", id, projects[0].Name)
		}
		assigned, err := assignedActivity(tx, id)
		if err != nil {
			return err
		}
		if assigned != nil {
			return domain.NewConflictError("user '%s' is the assignee of activity '%s'", id, assigned.Title)
		}
		if user.Role == domain.RoleAdmin {
			if err := checkOtherAdmin(tx, id); err != nil {
				return err
			}
		}
		return tx.DeleteUser(id)
	})
	if err != nil {
		return err
	}
	m.revoke(id)
	common.Log.WithField("userId", id).Info("user deleted")
	return nil
}

// EnsureAdmin creates the admin account on first start, an existing account of the email is kept untouched.
func (m *AccountManager) EnsureAdmin(ctx context.Context, email, password string) (*domain.UserInfo, error) {
	existing, err := m.store.Repositories(ctx).FindUserByEmail(normalizeEmail(email))
	if err == nil {
		info := existing.Info()
		return &info, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return m.CreateUser(ctx, &domain.UserCreation{Name: "admin", Email: email, Password: password, Role: domain.RoleAdmin})
}

func assignedActivity(tx persistence.Repositories, userID types.ID) (*domain.Activity, error) {
	projects, err := tx.ListProjects(&domain.ProjectQuery{Archived: domain.ArchiveStateAll})
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		stages, err := tx.ListStages(p.ID)
		if err != nil {
			return nil, err
		}
		for _, s := range stages {
			activities, err := tx.ListActivities(s.ID)
			if err != nil {
				return nil, err
			}
			for i := range activities {
				if activities[i].AssigneeID == userID {
					return &activities[i], nil
				}
			}
		}
	}
	return nil, nil
}

func checkOtherAdmin(tx persistence.Repositories, id types.ID) error {
	users, err := tx.ListUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID != id && u.Role == domain.RoleAdmin {
			return nil
		}
	}
	return domain.NewConflictError("the last admin can not be removed")
}

func notFound(err error, kind string, id types.ID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Kind: kind, ID: id.String()}
	}
	return err
}
