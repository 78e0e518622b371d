package models

import (
	"time"
)

// Message is a single chat line between a professor and a student. Rows are
// written once and never updated.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProfessorID int       `gorm:"column:idprof;not null;index:idx_conversation" json:"idprof"`
	StudentID   int       `gorm:"column:idalumno;not null;index:idx_conversation" json:"idalumno"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Timestamp   time.Time `gorm:"column:timestamp" json:"timestamp"`
	Sender      string    `gorm:"size:20" json:"sender"`
}

// TableName keeps the table the frontend and prior deployments expect.
func (Message) TableName() string {
	return "messages"
}

// Professor mirrors the pre-existing profesores directory table. It is only
// read for display names; this service never writes to it.
type Professor struct {
	ID        int    `gorm:"column:ID;primaryKey" json:"id"`
	FirstName string `gorm:"column:nombre;size:255" json:"nombre"`
	LastName  string `gorm:"column:apellido;size:255" json:"apellido"`
}

func (Professor) TableName() string {
	return "profesores"
}

// Student mirrors the pre-existing alumnos directory table. Read-only, like
// Professor.
type Student struct {
	ID        int    `gorm:"column:ID;primaryKey" json:"id"`
	FirstName string `gorm:"column:nombre;size:255" json:"nombre"`
	LastName  string `gorm:"column:apellido;size:255" json:"apellido"`
}

func (Student) TableName() string {
	return "alumnos"
}
