package operations

type CleaningTask struct {
	ID   int    `json:"id"`
	Area string `json:"area"`
	Time string `json:"time"`
	Done bool   `json:"done"`
}

func seedTasks() []CleaningTask {
	return []CleaningTask{
		{ID: 1, Area: "Ward A - Room 101", Time: "19:00"},
		{ID: 2, Area: "ICU - Waiting Area", Time: "20:00"},
		{ID: 3, Area: "Emergency Entrance", Time: "21:00", Done: true},
		{ID: 4, Area: "Radiology Hallway", Time: "21:30"},
	}
}

func (s *Service) Tasks() []CleaningTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CleaningTask{}, s.tasks...)
}

// ToggleTask flips a zone between done and pending.
func (s *Service) ToggleTask(id int) (CleaningTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = !s.tasks[i].Done
			return s.tasks[i], nil
		}
	}
	return CleaningTask{}, ErrTaskNotFound
}
