package export

import (
	"net/url"
	"strings"
)

// mailSubject はメールクライアント連携リンクの固定件名。
const mailSubject = "営業のご提案"

// MailtoURI は生成結果を本文に埋め込んだmailto: URIを組み立てる。
// 件名は固定で、本文はパーセントエンコードされる。
// mailto: URI（RFC 6068）では「+」は文字通りのプラス記号であり、
// スペースは%20で表現する必要がある。
func MailtoURI(result string) string {
	params := url.Values{
		"subject": {mailSubject},
		"body":    {result},
	}
	// url.Values.Encodeはスペースを「+」にするため%20へ置き換える。
	// 本文中のプラス記号自体は%2Bに変換済みなので衝突しない。
	return "mailto:?" + strings.ReplaceAll(params.Encode(), "+", "%20")
}
