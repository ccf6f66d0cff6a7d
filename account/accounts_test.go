package account_test

import (
	"context"
	"planboard/account"
	"planboard/domain"
	"planboard/persistence"
	"planboard/security"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("AccountManager", func() {
	var (
		ctx     context.Context
		store   *persistence.MemoryStore
		manager *account.AccountManager
		revoked []types.ID
	)
	BeforeEach(func() {
		ctx = context.Background()
		store = persistence.NewMemoryStore()
		revoked = nil
		manager = account.NewAccountManager(store, func(id types.ID) { revoked = append(revoked, id) })
	})

	Describe("CreateUser", func() {
		It("should create users with hashed secrets and unique emails", func() {
			u, err := manager.CreateUser(ctx, &domain.UserCreation{Name: "ann", Email: " Ann@Example.com", Password: "abc123", Role: domain.RoleEditor})
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("ann@example.com"))
			Expect(u.Role).To(Equal(domain.RoleEditor))

			stored, err := store.Repositories(ctx).GetUser(u.ID)
			Expect(err).To(BeNil())
			Expect(stored.Secret).ToNot(Equal("abc123"))
			Expect(security.CheckSecret(stored.Secret, "abc123")).To(BeTrue())

			_, err = manager.CreateUser(ctx, &domain.UserCreation{Name: "ann2", Email: "ANN@example.com", Password: "abc123", Role: domain.RoleViewer})
			Expect(err).To(Equal(domain.NewConflictError("email 'ann@example.com' is already registered")))
		})

		It("should validate the command", func() {
			_, err := manager.CreateUser(ctx, &domain.UserCreation{Name: "ann", Email: "not-an-email", Password: "abc123", Role: domain.RoleEditor})
			Expect(err).To(Equal(domain.NewValidationError("field 'email' failed on 'email'")))

			_, err = manager.CreateUser(ctx, &domain.UserCreation{Name: "ann", Email: "ann@example.com", Password: "abc", Role: "root"})
			Expect(err).To(Equal(domain.NewValidationError("field 'password' failed on 'min=6'; field 'role' failed on 'oneof=admin editor viewer'")))
		})
	})

	Describe("UpdateUser and DeleteUser", func() {
		var admin, editor *domain.UserInfo
		BeforeEach(func() {
			var err error
			admin, err = manager.EnsureAdmin(ctx, "admin@example.com", "secret1")
			Expect(err).To(BeNil())
			editor, err = manager.CreateUser(ctx, &domain.UserCreation{Name: "ann", Email: "ann@example.com", Password: "abc123", Role: domain.RoleEditor})
			Expect(err).To(BeNil())
		})

		It("should keep the bootstrap admin idempotent", func() {
			again, err := manager.EnsureAdmin(ctx, "ADMIN@example.com", "other-password")
			Expect(err).To(BeNil())
			Expect(again.ID).To(Equal(admin.ID))
			users, err := manager.QueryUsers(ctx)
			Expect(err).To(BeNil())
			Expect(len(users)).To(Equal(2))
		})

		It("should revoke sessions when role or password changes", func() {
			role := domain.RoleViewer
			u, err := manager.UpdateUser(ctx, editor.ID, &domain.UserUpdating{Role: &role})
			Expect(err).To(BeNil())
			Expect(u.Role).To(Equal(domain.RoleViewer))
			Expect(revoked).To(Equal([]types.ID{editor.ID}))

			name := "Ann"
			_, err = manager.UpdateUser(ctx, editor.ID, &domain.UserUpdating{Name: &name})
			Expect(err).To(BeNil())
			Expect(revoked).To(Equal([]types.ID{editor.ID}))
		})

		It("should protect the last admin", func() {
			role := domain.RoleEditor
			_, err := manager.UpdateUser(ctx, admin.ID, &domain.UserUpdating{Role: &role})
			Expect(err).To(Equal(domain.NewConflictError("the last admin can not be removed")))
			Expect(manager.DeleteUser(ctx, admin.ID)).To(Equal(domain.NewConflictError("the last admin can not be removed")))
		})

		It("should refuse to delete team members", func() {
			Expect(store.Transaction(ctx, func(tx persistence.Repositories) error {
				return tx.SaveProject(&domain.Project{ID: 100, Name: "launch", ManagerID: editor.ID, Team: []types.ID{editor.ID},
					Status: domain.ProjectActive, Archived: true})
			})).To(BeNil())
			Expect(manager.DeleteUser(ctx, editor.ID)).To(Equal(
				domain.NewConflictError("user '%s' is a member of project 'launch'", editor.ID)))

			Expect(store.Transaction(ctx, func(tx persistence.Repositories) error {
				return tx.DeleteProject(100)
			})).To(BeNil())
			Expect(manager.DeleteUser(ctx, editor.ID)).To(BeNil())
			Expect(revoked).To(Equal([]types.ID{editor.ID}))
			Expect(manager.DeleteUser(ctx, editor.ID)).To(Equal(&domain.NotFoundError{Kind: "user", ID: editor.ID.String()}))
		})

		It("should refuse to delete activity assignees", func() {
			Expect(store.Transaction(ctx, func(tx persistence.Repositories) error {
				if err := tx.SaveProject(&domain.Project{ID: 100, Name: "launch", ManagerID: admin.ID, Team: []types.ID{admin.ID},
					Status: domain.ProjectActive}); err != nil {
					return err
				}
				if err := tx.SaveStage(&domain.Stage{ID: 10, ProjectID: 100, Name: "design", Color: domain.ColorRed, Position: 1}); err != nil {
					return err
				}
				return tx.SaveActivity(&domain.Activity{ID: 1000, StageID: 10, ProjectID: 100, Title: "wireframes",
					AssigneeID: editor.ID, Status: domain.ActivityPending, Priority: domain.PriorityLow})
			})).To(BeNil())
			Expect(manager.DeleteUser(ctx, editor.ID)).To(Equal(
				domain.NewConflictError("user '%s' is the assignee of activity 'wireframes'", editor.ID)))
			Expect(revoked).To(BeNil())

			Expect(store.Transaction(ctx, func(tx persistence.Repositories) error {
				return tx.DeleteActivity(1000)
			})).To(BeNil())
			Expect(manager.DeleteUser(ctx, editor.ID)).To(BeNil())
		})
	})
})
