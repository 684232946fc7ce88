package profile

import (
	"fmt"
	"sort"
)

// Favorite is a bookmarked page, unique by URL.
type Favorite struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ErrDuplicateFavorite is returned when adding a URL that is already saved.
var ErrDuplicateFavorite = fmt.Errorf("favorite already exists")

type Favorites struct {
	items   []Favorite
	persist func() error
}

func newFavorites(initial []Favorite, persist func() error) *Favorites {
	return &Favorites{items: initial, persist: persist}
}

// Add saves a new favorite. Adding an already-favorited URL is rejected and
// leaves the list unchanged.
func (f *Favorites) Add(title, url string) error {
	for _, fav := range f.items {
		if fav.URL == url {
			return ErrDuplicateFavorite
		}
	}
	f.items = append(f.items, Favorite{Title: title, URL: url})
	return f.persist()
}

// Update edits the favorite stored under url.
func (f *Favorites) Update(url, newTitle, newURL string) error {
	for i, fav := range f.items {
		if fav.URL == url {
			f.items[i] = Favorite{Title: newTitle, URL: newURL}
			return f.persist()
		}
	}
	return fmt.Errorf("no favorite for %s", url)
}

// Remove deletes the favorite stored under url; absent URLs are a no-op.
func (f *Favorites) Remove(url string) error {
	for i, fav := range f.items {
		if fav.URL == url {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return f.persist()
		}
	}
	return nil
}

// All returns the favorites in insertion order.
func (f *Favorites) All() []Favorite {
	return append([]Favorite{}, f.items...)
}

// Sorted returns the favorites ordered by title, the way menus list them.
func (f *Favorites) Sorted() []Favorite {
	out := f.All()
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}
