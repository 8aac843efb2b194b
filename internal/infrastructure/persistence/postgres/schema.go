package postgres

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// Created once with IF NOT EXISTS. There are no versioned migrations: the
// store is rebuilt on every load and the table layout never changes in place.
// ══════════════════════════════════════════════════════════════════════════════

const schemaSQL = `
CREATE TABLE IF NOT EXISTS lessons (
    id BIGSERIAL PRIMARY KEY,
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
    id BIGSERIAL PRIMARY KEY,
    lesson_id BIGINT NOT NULL REFERENCES lessons(id),
    teacher_name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_teachers_lesson_id ON teachers(lesson_id);
`
