package domain

import "time"

type Customer struct {
	ID         int64     `db:"customer_id" json:"customer_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Email      *string   `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Address    string    `db:"address" json:"address"`
	Hostel     string    `db:"hostel" json:"hostel"`
	RoomNumber string    `db:"room_number" json:"room_number"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Employee struct {
	ID            int64        `db:"employee_id" json:"employee_id"`
	FirstName     string       `db:"first_name" json:"first_name"`
	LastName      string       `db:"last_name" json:"last_name"`
	Role          EmployeeRole `db:"role" json:"role"`
	ContactNumber string       `db:"contact_number" json:"contact_number"`
	Email         string       `db:"email" json:"email"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
