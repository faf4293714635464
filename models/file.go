package models

import (
	"strconv"
	"time"
)

// Accepted file types. Folders are pure hierarchy nodes and never carry content.
const (
	TypeFile   = "file"
	TypeFolder = "folder"
	TypeImage  = "image"
)

// RootParent is the reserved parent id meaning "top level, no parent folder".
const RootParent uint = 0

// File is a stored object owned by exactly one user. ParentID is either
// RootParent or the id of an existing File with Type == TypeFolder.
// LocalPath points at the blob on disk for non-folders; it is set once at
// creation and never leaves the server.
type File struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Name      string    `gorm:"size:255;not null"`
	Type      string    `gorm:"size:16;not null"`
	ParentID  uint      `gorm:"index;default:0"`
	IsPublic  bool      `gorm:"default:false"`
	LocalPath string    `gorm:"size:1024"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptedType reports whether t is one of the supported file types.
func AcceptedType(t string) bool {
	switch t {
	case TypeFile, TypeFolder, TypeImage:
		return true
	}
	return false
}

// FileView is the wire representation of a File. All id-valued fields are
// rendered as decimal strings; the root parent renders as the literal "0".
// The storage path is deliberately absent.
type FileView struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

// View renders the file for API responses.
func (f *File) View() FileView {
	return FileView{
		ID:       strconv.FormatUint(uint64(f.ID), 10),
		UserID:   strconv.FormatUint(uint64(f.UserID), 10),
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: strconv.FormatUint(uint64(f.ParentID), 10),
	}
}
