// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Service ve repository katmanı bu sentinel error'ları %w ile wrap ederek döner:
//
//	return fmt.Errorf("%w: message not found", pkg.ErrNotFound)
//
// Handler katmanı errors.Is() ile yakalayıp HTTP status code'una çevirir.
package pkg

import "errors"

// Domain-level error'lar.
var (
	// ErrUnauthenticated: token yok, bozuk, süresi dolmuş veya imzası geçersiz.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound: token geçerli ama kullanıcı artık yok (veya hedef kullanıcı yok).
	ErrUserNotFound = errors.New("user not found")
	// ErrNotFound: mesaj veya başka bir kaynak bulunamadı.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest: eksik receiver, boş mesaj gövdesi, geçersiz body.
	ErrBadRequest = errors.New("bad request")
	// ErrUpstream: store veya media store erişilemedi.
	ErrUpstream = errors.New("upstream failure")
	// ErrConflict: unique çakışması (ör. aynı email ile ikinci kayıt).
	ErrConflict = errors.New("conflict")
)
