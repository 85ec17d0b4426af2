package models

import "gorm.io/gorm"

// Version numarası 1'den başlar; 0 "kayıt yok" anlamında kullanılır.

func (f *Firm) BeforeCreate(tx *gorm.DB) error {
	if f.Version == 0 {
		f.Version = 1
	}
	return nil
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
