package repo

import (
	"Lura/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mustUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserRepository(db).CreateUser(context.Background(), &model.User{Email: email, Name: email})
	require.NoError(t, err)
	return u
}

func mustWorkspace(t *testing.T, db *gorm.DB, owner *model.User, name string) *model.Workspace {
	t.Helper()
	ws := &model.Workspace{Name: name, OwnerID: owner.ID}
	require.NoError(t, NewWorkspaceRepository(db).Create(context.Background(), ws))
	return ws
}

func TestWorkspaceRepository_CreateAddsOwnerMembership(t *testing.T) {
	db := newTestDB(t)
	r := NewWorkspaceRepository(db)
	ctx := context.Background()
	a := mustUser(t, db, "a@example.com")

	ws := mustWorkspace(t, db, a, "W")
	assert.NotZero(t, ws.ID)
	assert.Equal(t, model.WorkspaceStatusActive, ws.Status)

	m, err := r.GetMembership(ctx, ws.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.WorkspaceRoleOwner, m.Role)

	full, err := r.GetWithMembers(ctx, ws.ID)
	require.NoError(t, err)
	require.NotNil(t, full.Owner)
	assert.Equal(t, a.Email, full.Owner.Email)
	require.Len(t, full.Users, 1)
	require.NotNil(t, full.Users[0].User)
	assert.Equal(t, a.ID, full.Users[0].User.ID)
}

func TestWorkspaceRepository_OwnedSharedAndCounts(t *testing.T) {
	db := newTestDB(t)
	r := NewWorkspaceRepository(db)
	ctx := context.Background()
	a := mustUser(t, db, "a@example.com")
	b := mustUser(t, db, "b@example.com")

	wa := mustWorkspace(t, db, a, "A's")
	wb := mustWorkspace(t, db, b, "B's")
	_, err := r.UpsertMember(ctx, wb.ID, a.ID, model.WorkspaceRoleMember)
	require.NoError(t, err)

	owned, err := r.ListOwned(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, wa.ID, owned[0].ID)

	shared, err := r.ListShared(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, wb.ID, shared[0].ID)
	require.NotNil(t, shared[0].Owner)
	assert.Equal(t, b.ID, shared[0].Owner.ID)

	counts, err := r.CountMembers(ctx, []int64{wa.ID, wb.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[wa.ID])
	assert.Equal(t, int64(2), counts[wb.ID])
}

func TestWorkspaceRepository_UpsertMemberUpdatesRole(t *testing.T) {
	db := newTestDB(t)
	r := NewWorkspaceRepository(db)
	ctx := context.Background()
	a := mustUser(t, db, "a@example.com")
	b := mustUser(t, db, "b@example.com")
	ws := mustWorkspace(t, db, a, "W")

	m, err := r.UpsertMember(ctx, ws.ID, b.ID, model.WorkspaceRoleViewer)
	require.NoError(t, err)
	assert.Equal(t, model.WorkspaceRoleViewer, m.Role)
	require.NotNil(t, m.User)
	assert.Equal(t, b.Email, m.User.Email)

	m, err = r.UpsertMember(ctx, ws.ID, b.ID, model.WorkspaceRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.WorkspaceRoleAdmin, m.Role)

	members, err := r.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	removed, err := r.RemoveMember(ctx, ws.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = r.RemoveMember(ctx, ws.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWorkspaceRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	r := NewWorkspaceRepository(db)
	ctx := context.Background()
	a := mustUser(t, db, "a@example.com")
	ws := mustWorkspace(t, db, a, "W")
	other := mustWorkspace(t, db, a, "Other")

	tag := &model.Tag{Name: "t", Color: "#fff", WorkspaceID: ws.ID}
	require.NoError(t, NewTagRepository(db).Create(ctx, tag))
	c := &model.Case{Title: "C", WorkspaceID: ws.ID}
	cr := NewCaseRepository(db)
	require.NoError(t, cr.Create(ctx, c))
	require.NoError(t, cr.AddTag(ctx, c.ID, tag.ID))
	keep := &model.Case{Title: "keep", WorkspaceID: other.ID}
	require.NoError(t, cr.Create(ctx, keep))

	doc := &model.Document{Name: "d", OriginalName: "d.txt", Path: "uploads/d.txt", CaseID: c.ID, UserID: a.ID}
	dr := NewDocumentRepository(db)
	require.NoError(t, dr.Create(ctx, doc))
	require.NoError(t, dr.AddTags(ctx, []int64{doc.ID}, []int64{tag.ID}))
	require.NoError(t, NewCommentRepository(db).Create(ctx, &model.Comment{Content: "hi", DocumentID: doc.ID, UserID: a.ID}))

	paths, err := r.Delete(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/d.txt"}, paths)

	for _, m := range []any{&model.Case{}, &model.Tag{}, &model.Document{}, &model.Comment{}, &model.CaseTag{}, &model.DocumentTag{}} {
		var cnt int64
		require.NoError(t, db.Model(m).Count(&cnt).Error)
		if _, isCase := m.(*model.Case); isCase {
			assert.Equal(t, int64(1), cnt, "only the other workspace's case remains")
			continue
		}
		assert.Zero(t, cnt, "%T must be deleted", m)
	}
	_, err = r.GetByID(ctx, ws.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = r.GetMembership(ctx, ws.ID, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = r.Delete(ctx, ws.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
