// Package lesson содержит доменную модель занятия из расписания личного кабинета.
//
// Пакет определяет:
//
//   - Сущности: Lesson, Mention (упоминание преподавателя)
//   - Value Objects: Type (тип занятия), RawRecord (сырая запись API)
//   - Нормализатор описания: упорядоченный список правил Rule
//   - Классификатор типа занятия и извлечение ФИО преподавателей
//   - Интерфейс репозитория: Repository
//
// # Конвейер обработки
//
// Каждая сырая запись проходит один и тот же путь:
//
//	raw, _ := ... // RawRecord из API
//	l, err := NewLesson(raw)
//	// l.Description - нормализованный текст
//	// l.Type        - Лекции / Лабораторные работы / Практические занятия / Не указано
//	// l.Teachers    - {"Иванов И.И.", "Иванов И И"}
//
// Нормализация, классификация и извлечение - чистые функции без побочных
// эффектов; их можно заменить более точным разбором, не трогая хранилище.
//
// # Зависимости
//
// Пакет использует golang.org/x/net/html для снятия разметки; остальное -
// стандартная библиотека.
package lesson
