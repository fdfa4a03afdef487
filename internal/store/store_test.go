package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"opensite/api/internal/model"
)

const (
	testCompanyID   = uint(1)
	otherCompanyID  = uint(2)
	adminID         = uint(10)
	pmID            = uint(11)
	operativeID     = uint(12)
	outsiderAdminID = uint(20)
)

// newTestStore builds a store with a known cast: a company admin, a PM
// (holds MANAGE_TIMESHEETS), an operative (does not), and an admin of an
// unrelated tenant.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(zap.NewNop().Sugar())
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.companies[testCompanyID] = &model.Company{ID: testCompanyID, Name: "Meridian Construction", Status: 1}
	s.companies[otherCompanyID] = &model.Company{ID: otherCompanyID, Name: "Rival Builders", Status: 1}

	users := []*model.User{
		{ID: adminID, CompanyID: testCompanyID, Username: "dana", Name: "Dana Whitfield", Role: model.RoleCompanyAdmin, Status: 1},
		{ID: pmID, CompanyID: testCompanyID, Username: "marcus", Name: "Marcus Cole", Role: model.RoleProjectManager, Status: 1},
		{ID: operativeID, CompanyID: testCompanyID, Username: "tom", Name: "Tom Okafor", Role: model.RoleOperative, Status: 1},
		{ID: outsiderAdminID, CompanyID: otherCompanyID, Username: "rival", Name: "Rival Admin", Role: model.RoleCompanyAdmin, Status: 1},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	s.lastID = 100
	return s
}

func activeProject(t *testing.T, s *Store) *model.Project {
	t.Helper()
	p, err := s.CreateProject(adminID, "Riverside Plaza", "", 51.5074, -0.1278, 200, s.now())
	require.NoError(t, err)
	p, err = s.UpdateProjectStatus(adminID, p.ID, model.ProjectActive)
	require.NoError(t, err)
	return p
}

func TestUnknownActorFailsFast(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateProject(999, "Ghost Yard", "", 0, 0, 100, s.now())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Zero(t, s.AuditLogLen())
}

// A denied call leaves the target's fields and the audit log untouched.
func TestPermissionDeniedLeavesNoTrace(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)
	auditBefore := s.AuditLogLen()

	_, err = s.ReviewTimesheet(operativeID, ts.ID, model.TimesheetApproved, "")
	require.Error(t, err)
	assert.True(t, IsPermissionDenied(err))

	unchanged, err := s.GetTimesheet(pmID, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetPending, unchanged.Status)
	assert.Equal(t, auditBefore, s.AuditLogLen())
}

// After N successful mutating calls the trail gains exactly N entries,
// newest first, each attributed to a pre-existing actor.
func TestAuditLogAppendOnly(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s) // 2 entries: created + status
	before := s.AuditLogLen()
	require.Equal(t, 2, before)

	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)
	_, err = s.ReviewTimesheet(pmID, ts.ID, model.TimesheetApproved, "")
	require.NoError(t, err)
	_, err = s.CreateEquipment(adminID, "Excavator EX-210", "excavator")
	require.NoError(t, err)

	entries, err := s.AuditLog(adminID, 0)
	require.NoError(t, err)
	require.Len(t, entries, before+3)

	assert.Equal(t, model.AuditEquipmentCreated, entries[0].Action)
	assert.Equal(t, model.AuditTimesheetApproved, entries[1].Action)
	assert.Equal(t, model.AuditTimesheetSubmitted, entries[2].Action)
	for _, e := range entries {
		_, err := s.UserByID(e.ActorID)
		assert.NoError(t, err, "audit entry references unknown actor %d", e.ActorID)
	}
}

func TestAuditLogReadIsGated(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AuditLog(operativeID, 0)
	require.Error(t, err)
	assert.True(t, IsPermissionDenied(err))
}

// The PM (holds MANAGE_TIMESHEETS) approves a pending timesheet: status
// flips, one audit entry names the actor and target, and the caller gets a
// copy of the updated record.
func TestReviewTimesheetApproved(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)

	updated, err := s.ReviewTimesheet(pmID, ts.ID, model.TimesheetApproved, "")
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetApproved, updated.Status)

	entries, err := s.AuditLog(adminID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditTimesheetApproved, entries[0].Action)
	assert.Equal(t, pmID, entries[0].ActorID)
	require.NotNil(t, entries[0].Target)
	assert.Equal(t, "timesheet", entries[0].Target.Type)
	assert.Equal(t, ts.ID, entries[0].Target.ID)
}

func TestReviewTimesheetRejectionNeedsReason(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)

	_, err = s.ReviewTimesheet(pmID, ts.ID, model.TimesheetRejected, "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	rejected, err := s.ReviewTimesheet(pmID, ts.ID, model.TimesheetRejected, "no site access record")
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetRejected, rejected.Status)
	assert.Equal(t, "no site access record", rejected.RejectionReason)

	// REJECTED is terminal.
	_, err = s.ReviewTimesheet(pmID, ts.ID, model.TimesheetApproved, "")
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
}

// Returned entities are copies: mutating them must not leak into the store.
func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)

	ts.Status = model.TimesheetApproved
	ts.TrustScore = 0

	stored, err := s.GetTimesheet(pmID, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetPending, stored.Status)
	assert.Equal(t, 1.0, stored.TrustScore)
}

// Clocking in 300 m outside a 200 m site with 60 m accuracy yields the 0.3
// score and flags the record, but never blocks the clock-in.
func TestClockInFarOffSiteIsFlagged(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)

	pos := &model.Position{
		Lat:            p.Lat + 300/111195.0,
		Lng:            p.Lng,
		AccuracyMeters: 60,
		Timestamp:      s.now(),
	}
	ts, err := s.ClockIn(operativeID, p.ID, pos)
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetFlagged, ts.Status)
	assert.InDelta(t, 0.3, ts.TrustScore, 1e-9)
	assert.Contains(t, ts.TrustReasons, "location")
	assert.Contains(t, ts.TrustReasons, "accuracy")

	// Flagged records still resolve through manager review.
	approved, err := s.ReviewTimesheet(pmID, ts.ID, model.TimesheetApproved, "")
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetApproved, approved.Status)
}

func TestClockInOnSiteIsPending(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)

	pos := &model.Position{Lat: p.Lat, Lng: p.Lng, AccuracyMeters: 10, Timestamp: s.now()}
	ts, err := s.ClockIn(operativeID, p.ID, pos)
	require.NoError(t, err)
	assert.Equal(t, model.TimesheetPending, ts.Status)
	assert.Equal(t, 1.0, ts.TrustScore)
	assert.Empty(t, ts.TrustReasons)
}

func TestDoubleClockInRejected(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)

	_, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)
	_, err = s.ClockIn(operativeID, p.ID, nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestClockOut(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)

	out, err := s.ClockOut(operativeID, ts.ID)
	require.NoError(t, err)
	require.NotNil(t, out.ClockOut)

	_, err = s.ClockOut(operativeID, ts.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

// Cross-tenant access reads as absence, not as a permission hint.
func TestTenantIsolation(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	ts, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)

	_, err = s.GetProject(outsiderAdminID, p.ID)
	assert.True(t, IsNotFound(err))
	_, err = s.ReviewTimesheet(outsiderAdminID, ts.ID, model.TimesheetApproved, "")
	assert.True(t, IsNotFound(err))
}

// User lookups obey the same rule: another tenant's crew does not exist.
func TestGetUserCrossTenantReadsAsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(outsiderAdminID, operativeID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	u, err := s.GetUser(adminID, operativeID)
	require.NoError(t, err)
	assert.Equal(t, "tom", u.Username)
}

func TestProjectStatusMachine(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject(adminID, "Harbour View", "", 51.5033, -0.0195, 300, s.now())
	require.NoError(t, err)
	assert.Equal(t, model.ProjectPlanning, p.Status)

	_, err = s.UpdateProjectStatus(adminID, p.ID, model.ProjectCompleted)
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))

	p, err = s.UpdateProjectStatus(adminID, p.ID, model.ProjectActive)
	require.NoError(t, err)
	p, err = s.UpdateProjectStatus(adminID, p.ID, model.ProjectCompleted)
	require.NoError(t, err)
	assert.NotNil(t, p.EndDate)
}

func TestEquipmentAssignmentLifecycle(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	eq, err := s.CreateEquipment(adminID, "Tower Crane TC-80", "crane")
	require.NoError(t, err)

	eq, err = s.AssignEquipment(adminID, eq.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EquipmentInUse, eq.Status)
	require.NotNil(t, eq.ProjectID)

	// In-use equipment cannot go straight to maintenance.
	_, err = s.SetEquipmentMaintenance(adminID, eq.ID, true)
	assert.True(t, IsInvalidTransition(err))

	eq, err = s.ReleaseEquipment(adminID, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EquipmentAvailable, eq.Status)
	assert.Nil(t, eq.ProjectID)
}

func TestInvoiceStatusMachine(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	inv, err := s.CreateInvoice(adminID, p.ID, "Thameside Holdings", 184500, s.now().AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceDraft, inv.Status)

	_, err = s.UpdateInvoiceStatus(adminID, inv.ID, model.InvoicePaid)
	assert.True(t, IsInvalidTransition(err))

	inv, err = s.UpdateInvoiceStatus(adminID, inv.ID, model.InvoiceSent)
	require.NoError(t, err)
	inv, err = s.UpdateInvoiceStatus(adminID, inv.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.NotNil(t, inv.PaidAt)
}

func TestOperativeSeesOnlyOwnTimesheets(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)

	_, err := s.ClockIn(operativeID, p.ID, nil)
	require.NoError(t, err)
	_, err = s.ClockIn(pmID, p.ID, nil)
	require.NoError(t, err)

	own, err := s.ListTimesheets(operativeID, TimesheetFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, operativeID, own[0].UserID)

	all, err := s.ListTimesheets(pmID, TimesheetFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
