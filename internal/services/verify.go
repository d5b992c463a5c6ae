package services

import (
	"net/http"

	"github.com/tnma-app/membership-backend/internal/models"
)

// Stable machine-readable codes for scan rejections.
const (
	CodeScannerNotVerified = "SCANNER_NOT_VERIFIED"
	CodeOwnerNotVerified   = "OWNER_NOT_VERIFIED"
	CodeOwnerNotFound      = "OWNER_NOT_FOUND"
	CodeEmployeeNotFound   = "EMPLOYEE_NOT_FOUND"
	CodeInvalidQr          = "INVALID_QR"
	CodeInvalidTarget      = "INVALID_TARGET"
	CodeScanOk             = "SCAN_OK"
)

// ScanBlock is a gate rejection: nil means the scan may proceed.
type ScanBlock struct {
	Status  int
	Code    string
	Message string
}

// ScannerBlock decides whether the authenticated principal may scan at all.
// Only Owners/Admins are gated on their own verification; employees act on
// behalf of a shop that is checked target-side when their QR is scanned.
func ScannerBlock(p *models.Principal) *ScanBlock {
	if p.IsEmployee() {
		return nil
	}
	if !p.Verified {
		return &ScanBlock{
			Status:  http.StatusForbidden,
			Code:    CodeScannerNotVerified,
			Message: "Your shop profile is not verified yet. You cannot scan QR codes.",
		}
	}
	return nil
}

// TargetBlock decides whether the resolved scan target may be scanned.
// Exactly one of owner/employee is set; parentOwner is the employee's
// pre-fetched owning Owner (nil when absent or not found).
//
// An employee with no owner reference passes the gate; the ledger rejects it
// later with INVALID_TARGET when no opposite party can be resolved.
func TargetBlock(owner *models.User, employee *models.Employee, parentOwner *models.User) *ScanBlock {
	if owner != nil {
		if !owner.IsProfileVerified {
			return &ScanBlock{
				Status:  http.StatusForbidden,
				Code:    CodeOwnerNotVerified,
				Message: "This shop is not verified yet. QR is temporarily blocked.",
			}
		}
		return nil
	}

	if employee != nil {
		if employee.Owner != nil {
			if parentOwner == nil || !parentOwner.IsProfileVerified {
				return &ScanBlock{
					Status:  http.StatusForbidden,
					Code:    CodeOwnerNotVerified,
					Message: "This shop is not verified yet. Employee QR is temporarily blocked.",
				}
			}
		}
		return nil
	}

	return &ScanBlock{
		Status:  http.StatusForbidden,
		Code:    CodeInvalidQr,
		Message: "Invalid or unsupported QR code.",
	}
}
