package patient

import "fmt"

type Bed struct {
	ID        string `json:"id"`
	Occupied  bool   `json:"occupied"`
	PatientID string `json:"patientId,omitempty"`
}

type Ward struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Beds []Bed  `json:"beds"`
}

type wardSpec struct {
	id        string
	name      string
	prefix    string
	size      int
	available map[int]bool
}

func (w wardSpec) bedID(n int) string {
	return fmt.Sprintf("%s-%02d", w.prefix, n)
}

// Static floor plan. Beds not listed as available are occupied by patients
// outside this registry.
var wardLayout = []wardSpec{
	{id: "icu", name: "ICU", prefix: "ICU", size: 8, available: set(2, 5, 7)},
	{id: "gen-a", name: "General Ward A", prefix: "A", size: 12, available: set(2, 3, 5, 6, 8, 9, 12)},
	{id: "neuro", name: "Neurology Ward", prefix: "N", size: 6, available: set(1, 4)},
}

func set(ns ...int) map[int]bool {
	m := make(map[int]bool, len(ns))
	for _, n := range ns {
		m[n] = true
	}
	return m
}

func findWard(id string) (wardSpec, bool) {
	for _, w := range wardLayout {
		if w.id == id {
			return w, true
		}
	}
	return wardSpec{}, false
}

// buildWards overlays admitted patients on the static floor plan.
func buildWards(patients []Patient) []Ward {
	out := make([]Ward, 0, len(wardLayout))
	for _, layout := range wardLayout {
		w := Ward{ID: layout.id, Name: layout.name, Beds: make([]Bed, layout.size)}
		for i := 1; i <= layout.size; i++ {
			w.Beds[i-1] = Bed{ID: layout.bedID(i), Occupied: !layout.available[i]}
		}
		for _, p := range patients {
			if p.Status != StatusAdmitted || p.Ward != layout.name {
				continue
			}
			for i := range w.Beds {
				if w.Beds[i].ID == p.Room {
					w.Beds[i].Occupied = true
					w.Beds[i].PatientID = p.ID
				}
			}
		}
		out = append(out, w)
	}
	return out
}

func bedAvailable(wards []Ward, wardID, bedID string) (bool, bool) {
	for _, w := range wards {
		if w.ID != wardID {
			continue
		}
		for _, b := range w.Beds {
			if b.ID == bedID {
				return true, !b.Occupied
			}
		}
		return false, false
	}
	return false, false
}

const cardiacBed = "ICU-01"

// reserveCardiacBed returns ICU-01 unless another registry patient holds
// it, then the first free ICU bed. full reports that no ICU bed was free
// and ICU-01 is handed out twice.
func reserveCardiacBed(peers []Patient, patientID string) (bed string, full bool) {
	held := false
	for _, p := range peers {
		if p.ID != patientID && p.Status == StatusAdmitted && p.Ward == "ICU" && p.Room == cardiacBed {
			held = true
			break
		}
	}
	if !held {
		return cardiacBed, false
	}
	for _, w := range buildWards(peers) {
		if w.ID != "icu" {
			continue
		}
		for _, b := range w.Beds {
			if !b.Occupied {
				return b.ID, false
			}
		}
	}
	return cardiacBed, true
}
