package model

import "time"

// WeeklyReview holds the five sections extracted from one generated review.
// Each section is nil when the model did not produce it.
type WeeklyReview struct {
    ID             uint64    `json:"id"`
    UserID         uint64    `json:"user_id"`
    WeekStart      time.Time `json:"week_start"`
    WeekEnd        time.Time `json:"week_end"`
    WhatWorked     *string   `json:"what_worked"`
    WhatDidntWork  *string   `json:"what_didnt_work"`
    KeyLearnings   *string   `json:"key_learnings"`
    NextPriorities *string   `json:"next_priorities"`
    HardTruth      *string   `json:"hard_truth"`
    GeneratedAt    time.Time `json:"generated_at"`
    CreatedAt      time.Time `json:"created_at"`
}
