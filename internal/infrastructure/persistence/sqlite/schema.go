package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS lessons (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    start_datetime TEXT NOT NULL,
    end_datetime TEXT NOT NULL,
    description TEXT NOT NULL,
    date TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    type_lesson TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lessons_date_start ON lessons(date, start_time);

CREATE TABLE IF NOT EXISTS teachers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    lesson_id INTEGER NOT NULL REFERENCES lessons(id),
    teacher_name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_teachers_lesson_id ON teachers(lesson_id);
`
