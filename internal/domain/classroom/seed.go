package classroom

import "time"

// NewEmptyState returns a classroom with the default grid, timetable shape and
// store catalog but no students, lessons or history.
func NewEmptyState() State {
	return State{
		Role:     RoleTeacher,
		Students: []Student{},
		PointLog: []PointEvent{},
		Seating:  Seating{Columns: 4, Rows: 3, Positions: map[string]Position{}},
		Syllabus: Syllabus{Weeks: []Week{}},
		Schedule: Schedule{
			Week:  1,
			Days:  []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6"},
			Slots: demoSlots(),
			Cells: map[CellKey]LessonRef{},
		},
		Logbook:       map[LogbookKey]LogbookEntry{},
		Announcements: []Announcement{},
		Chats:         map[string]ChatThread{},
		Store:         demoStore(),
		Inventory:     map[string][]string{},
		Toasts:        []Toast{},
	}
}

// NewDemoState builds the seeded classroom the prototype starts with.
func NewDemoState(now time.Time) State {
	students := []Student{
		demoStudent("s1", "Nguyễn Minh An", "An", "🦊", "Nguyễn Văn Hùng", "0901 234 567", 50, 20, 15, 15),
		demoStudent("s2", "Trần Bảo Ngọc", "Ngọc", "🐼", "Trần Thị Mai", "0902 345 678", 120, 50, 40, 30),
		demoStudent("s3", "Lê Gia Huy", "Huy", "🐯", "Lê Văn Tâm", "0903 456 789", 85, 30, 25, 30),
		demoStudent("s4", "Phạm Thu Hà", "Hà", "🐰", "Phạm Quốc Bảo", "0904 567 890", 40, 10, 20, 10),
		demoStudent("s5", "Võ Đức Thịnh", "Thịnh", "🐻", "Võ Thị Lan", "0905 678 901", 65, 25, 10, 30),
		demoStudent("s6", "Đặng Khánh Linh", "Linh", "🦄", "Đặng Minh Quân", "0906 789 012", 95, 35, 40, 20),
	}
	students[0].HealthNotes = []string{"Dị ứng đậu phộng"}
	students[3].HealthNotes = []string{"Cận thị, ngồi bàn đầu"}

	positions := make(map[string]Position, len(students))
	for i, st := range students {
		positions[st.ID] = Position{X: i % 4, Y: i / 4}
	}

	return State{
		Role:             RoleTeacher,
		CurrentStudentID: "s1",
		Students:         students,
		PointLog:         []PointEvent{},
		Seating:          Seating{Columns: 4, Rows: 3, Positions: positions},
		Syllabus:         demoSyllabus(),
		Schedule: Schedule{
			Week:  1,
			Days:  []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6"},
			Slots: demoSlots(),
			Cells: map[CellKey]LessonRef{
				{Day: 0, Slot: 0}: {SubjectID: "toan", LessonID: "toan-1-1"},
				{Day: 0, Slot: 1}: {SubjectID: "tieng-viet", LessonID: "tv-1-1"},
				{Day: 1, Slot: 0}: {SubjectID: "toan", LessonID: "toan-1-2"},
				{Day: 2, Slot: 2}: {SubjectID: "khoa-hoc", LessonID: "kh-1-1"},
			},
		},
		Logbook: map[LogbookKey]LogbookEntry{},
		Announcements: []Announcement{{
			ID:        "a1",
			Author:    "Cô Lan",
			Title:     "Chào mừng năm học mới",
			Content:   "Chào các em và quý phụ huynh! Lớp mình bắt đầu tuần học đầu tiên.",
			CreatedAt: now,
		}},
		Chats: map[string]ChatThread{
			"s1": {
				StudentID:  "s1",
				ParentName: "Nguyễn Văn Hùng",
				Messages: []Message{{
					ID:        "m1",
					From:      SenderParent,
					Text:      "Chào cô, hôm nay cháu An có ngoan không ạ?",
					Timestamp: now,
				}},
			},
		},
		Store:     demoStore(),
		Inventory: map[string][]string{},
		Toasts:    []Toast{},
	}
}

func demoStudent(id, name, nick, avatar, parent, phone string, balance, chamChi, sangTao, kyLuat int) Student {
	return Student{
		ID:          id,
		FullName:    name,
		Nickname:    nick,
		Avatar:      avatar,
		Parent:      ParentContact{Name: parent, Phone: phone},
		HealthNotes: []string{},
		Points: Points{
			Balance: balance,
			ChamChi: chamChi,
			SangTao: sangTao,
			KyLuat:  kyLuat,
		},
		Attendance: Attendance{PresentDays: 18, AbsentDays: 1, LastStatus: AttendancePresent},
		Grades: []GradeRecord{
			{Subject: "Toán", Term: "HK1", Score: 8.5},
			{Subject: "Tiếng Việt", Term: "HK1", Score: 9},
		},
	}
}

func demoSyllabus() Syllabus {
	return Syllabus{Weeks: []Week{
		{Number: 1, Subjects: []Subject{
			{ID: "toan", Name: "Toán", Lessons: []Lesson{
				{ID: "toan-1-1", Title: "Phép cộng trong phạm vi 100", Objective: "Cộng có nhớ hai chữ số", Content: "Ôn tập bảng cộng, đặt tính rồi tính."},
				{ID: "toan-1-2", Title: "Phép trừ trong phạm vi 100", Objective: "Trừ có nhớ hai chữ số", Content: "Đặt tính, trừ từ phải sang trái."},
			}},
			{ID: "tieng-viet", Name: "Tiếng Việt", Lessons: []Lesson{
				{ID: "tv-1-1", Title: "Tập đọc: Ngày hôm qua đâu rồi?", Objective: "Đọc trôi chảy, hiểu ý bài thơ", Content: "Đọc mẫu, luyện đọc khổ thơ, trả lời câu hỏi."},
			}},
			{ID: "khoa-hoc", Name: "Khoa học", Lessons: []Lesson{
				{ID: "kh-1-1", Title: "Nước và sự sống", Objective: "Biết vai trò của nước", Content: "Quan sát, thảo luận nhóm về nguồn nước."},
			}},
		}},
		{Number: 2, Subjects: []Subject{
			{ID: "toan", Name: "Toán", Lessons: []Lesson{
				{ID: "toan-2-1", Title: "Bảng nhân 2", Objective: "Thuộc bảng nhân 2", Content: "Lập bảng nhân từ phép cộng lặp."},
			}},
			{ID: "tieng-viet", Name: "Tiếng Việt", Lessons: []Lesson{
				{ID: "tv-2-1", Title: "Chính tả: Mẹ", Objective: "Viết đúng chính tả", Content: "Nghe viết đoạn thơ, phân biệt tr/ch."},
			}},
		}},
	}}
}

func demoSlots() []Slot {
	return []Slot{
		{Label: "Tiết 1", Time: "07:30"},
		{Label: "Tiết 2", Time: "08:15"},
		{Label: "Tiết 3", Time: "09:15"},
		{Label: "Tiết 4", Time: "10:00"},
		{Label: "Tiết 5", Time: "14:00"},
	}
}

func demoStore() []StoreItem {
	return []StoreItem{
		{ID: "sticker", Name: "Hình dán ngôi sao", Cost: 20, Icon: "⭐", Description: "Một tấm hình dán lấp lánh"},
		{ID: "pencil", Name: "Bút chì màu", Cost: 40, Icon: "✏️", Description: "Hộp bút chì 12 màu"},
		{ID: "homework-pass", Name: "Miễn bài tập", Cost: 80, Icon: "🎟️", Description: "Miễn một bài tập về nhà"},
		{ID: "seat-choice", Name: "Chọn chỗ ngồi", Cost: 100, Icon: "🪑", Description: "Tự chọn chỗ ngồi trong một tuần"},
	}
}
