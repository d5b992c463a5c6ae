package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tnma-app/membership-backend/internal/models"
)

func ownerPrincipal(verified bool) *models.Principal {
	return models.UserPrincipal(&models.User{
		ID:                primitive.NewObjectID(),
		Name:              "Owner",
		Role:              models.RoleOwner,
		IsProfileVerified: verified,
	})
}

func employeePrincipal(withOwner bool) *models.Principal {
	e := &models.Employee{
		ID:   primitive.NewObjectID(),
		Name: "Emp",
		Role: models.RoleEmployee,
	}
	if withOwner {
		ownerID := primitive.NewObjectID()
		e.Owner = &ownerID
	}
	return models.EmployeePrincipalOf(e)
}

func TestScannerBlockUnverifiedOwner(t *testing.T) {
	block := ScannerBlock(ownerPrincipal(false))
	require.NotNil(t, block)
	assert.Equal(t, http.StatusForbidden, block.Status)
	assert.Equal(t, CodeScannerNotVerified, block.Code)
}

func TestScannerBlockVerifiedOwnerPasses(t *testing.T) {
	assert.Nil(t, ScannerBlock(ownerPrincipal(true)))
}

func TestScannerBlockEmployeesAreExempt(t *testing.T) {
	// an employee's shop verification is checked target-side only
	assert.Nil(t, ScannerBlock(employeePrincipal(true)))
	assert.Nil(t, ScannerBlock(employeePrincipal(false)))
}

func TestTargetBlockOwner(t *testing.T) {
	verified := &models.User{IsProfileVerified: true}
	unverified := &models.User{}

	assert.Nil(t, TargetBlock(verified, nil, nil))

	block := TargetBlock(unverified, nil, nil)
	require.NotNil(t, block)
	assert.Equal(t, CodeOwnerNotVerified, block.Code)
	assert.Equal(t, http.StatusForbidden, block.Status)
}

func TestTargetBlockEmployeeInheritsOwnerVerification(t *testing.T) {
	ownerID := primitive.NewObjectID()
	emp := &models.Employee{Owner: &ownerID}

	// parent owner verified: scan may proceed
	assert.Nil(t, TargetBlock(nil, emp, &models.User{IsProfileVerified: true}))

	// parent owner unverified
	block := TargetBlock(nil, emp, &models.User{})
	require.NotNil(t, block)
	assert.Equal(t, CodeOwnerNotVerified, block.Code)

	// parent owner missing entirely
	block = TargetBlock(nil, emp, nil)
	require.NotNil(t, block)
	assert.Equal(t, CodeOwnerNotVerified, block.Code)
}

func TestTargetBlockOrphanEmployeePassesGate(t *testing.T) {
	// no owner reference at all: the gate passes and the ledger later
	// rejects with INVALID_TARGET when no opposite party resolves
	assert.Nil(t, TargetBlock(nil, &models.Employee{}, nil))
}

func TestTargetBlockNoTarget(t *testing.T) {
	block := TargetBlock(nil, nil, nil)
	require.NotNil(t, block)
	assert.Equal(t, CodeInvalidQr, block.Code)
}
