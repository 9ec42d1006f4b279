package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"postline/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword satisfies the password rules and is the password of every
// user created by CreateUser.
const DefaultPassword = "Password123"

var defaultHash []byte

// CreateUser persists an active user with DefaultPassword. Overrides run
// before the insert.
func CreateUser(t testing.TB, db *gorm.DB, username string, overrides ...func(*models.User)) *models.User {
	t.Helper()

	if defaultHash == nil {
		h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		defaultHash = h
	}

	name := username[1:]
	user := &models.User{
		Username:  username,
		FirstName: name,
		LastName:  "Doe",
		Email:     name + "@example.org",
		Password:  string(defaultHash),
		IsActive:  true,
	}
	for _, o := range overrides {
		o(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	// gorm skips zero-valued bools with a default tag on insert.
	if !user.IsActive {
		if err := db.Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate %s: %v", username, err)
		}
	}
	return user
}

// CreatePost persists a post by author at postedAt.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title, body string, postedAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Title: title, Body: body, PostedAt: postedAt}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// PNGBytes encodes a solid w x h PNG.
func PNGBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGDeclaringSize returns a 1x1 PNG whose IHDR claims w x h. DecodeConfig
// reports the claimed size; a full decode would allocate for it.
func PNGDeclaringSize(t testing.TB, w, h uint32) []byte {
	t.Helper()
	buf := PNGBytes(t, 1, 1)
	// signature(8) + length(4) + "IHDR"(4), then width and height.
	binary.BigEndian.PutUint32(buf[16:20], w)
	binary.BigEndian.PutUint32(buf[20:24], h)
	binary.BigEndian.PutUint32(buf[29:33], crc32.ChecksumIEEE(buf[12:29]))
	return buf
}
