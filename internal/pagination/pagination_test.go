package pagination

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: 1, PageSize: DefaultPageSize}},
		{PageRequest{Page: 3, PageSize: 5}, PageRequest{Page: 3, PageSize: 5}},
		{PageRequest{Page: -1, PageSize: 1000}, PageRequest{Page: 1, PageSize: MaxPageSize}},
	}
	for _, tt := range tests {
		got := tt.in
		got.Defaults()
		if got != tt.want {
			t.Errorf("Defaults(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 1, 20, 0)
	if resp.Data == nil || resp.TotalPages != 0 {
		t.Errorf("unexpected empty page %+v", resp)
	}

	resp = NewPageResponse([]int{1, 2}, 2, 2, 5)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
}

type entry struct {
	ID    int
	Owner string
}

func TestList(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for i := 1; i <= 7; i++ {
		owner := "a"
		if i%2 == 0 {
			owner = "b"
		}
		db.Create(&entry{ID: i, Owner: owner})
	}

	query := db.Model(&entry{}).Where("owner = ?", "a")

	page, err := List[entry](query, PageRequest{Page: 1, PageSize: 3}, "id DESC")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalItems != 4 || page.TotalPages != 2 || len(page.Data) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Data[0].ID != 7 || page.Data[2].ID != 3 {
		t.Errorf("unexpected order %+v", page.Data)
	}

	page, err = List[entry](query, PageRequest{Page: 2, PageSize: 3}, "id DESC")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != 1 {
		t.Errorf("unexpected second page %+v", page.Data)
	}

	page, err = List[entry](query, PageRequest{Page: 9, PageSize: 3}, "id DESC")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data) != 0 || page.Data == nil {
		t.Errorf("expected empty non-nil page, got %+v", page.Data)
	}
}
