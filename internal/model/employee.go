package model

import "time"

// Employee mirrors the `employees` table: payroll-relevant data for the
// workshop's personnel.  Employees are distinct from users; an employee
// may or may not have a login account.
type Employee struct {
    ID              uint64    // employees.id
    FirstName       string    // employees.first_name
    LastName        string    // employees.last_name
    Position        string    // employees.position
    HourlyWageCents int64     // employees.hourly_wage_cents
    HiredAt         time.Time // employees.hired_at
    IsActive        bool      // employees.is_active (soft delete)
    CreatedAt       time.Time // employees.created_at
    UpdatedAt       time.Time // employees.updated_at
}

// CompanyProfile mirrors the single-row `company_profile` table used by the
// settings screen (workshop identity printed on quotes and invoices).
type CompanyProfile struct {
    ID        uint64    // company_profile.id
    Name      string    // company_profile.name
    Address   string    // company_profile.address
    Phone     string    // company_profile.phone
    Email     string    // company_profile.email
    UpdatedAt time.Time // company_profile.updated_at
}
